package domain

import (
	"maps"
	"time"
)

// SnapshotVersion is the on-disk format version written by this build.
const SnapshotVersion uint32 = 1

// Snapshot is a persisted tree together with the time it was captured.
// Every path in Tree is rooted under Root.
type Snapshot struct {
	Root        string
	CapturedAt  time.Time
	Version     uint32
	Fingerprint uint64
	// Branches records when subtrees were rescanned after the last full scan.
	Branches map[string]time.Time
	Tree     *TreeNode
}

// NewSnapshot returns a snapshot of a full scan of tree.
func NewSnapshot(tree *TreeNode, capturedAt time.Time, fingerprint uint64) *Snapshot {
	return &Snapshot{
		Root:        tree.Path,
		CapturedAt:  capturedAt,
		Version:     SnapshotVersion,
		Fingerprint: fingerprint,
		Tree:        tree,
	}
}

// CapturedFor returns the newest capture time covering path: the full scan time
// or the latest rescan of path or one of its ancestors.
func (s *Snapshot) CapturedFor(path string) time.Time {
	at := s.CapturedAt
	for branch, stamp := range s.Branches {
		if stamp.After(at) && IsWithin(branch, path) {
			at = stamp
		}
	}
	return at
}

// Slice returns the subtree at path, or nil when it is not part of the snapshot.
func (s *Snapshot) Slice(path string) *TreeNode {
	if s == nil || s.Tree == nil {
		return nil
	}
	return s.Tree.Find(path)
}

// WithTree returns a shallow copy of s holding tree and a copy of the branch stamps.
func (s *Snapshot) WithTree(tree *TreeNode) *Snapshot {
	cp := *s
	cp.Tree = tree
	cp.Branches = maps.Clone(s.Branches)
	if cp.Branches == nil {
		cp.Branches = make(map[string]time.Time)
	}
	return &cp
}

// CacheSettings locates the persistent cache and bounds snapshot age.
type CacheSettings struct {
	Dir string
	TTL time.Duration
}

// CacheLookup is the result of consulting the cache for a root key.
type CacheLookup struct {
	Snapshot  *Snapshot
	Age       time.Duration
	Freshness Freshness
}
