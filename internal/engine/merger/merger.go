// Package merger grafts freshly walked subtrees into cached snapshots.
package merger

import (
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/core/ports"
	"go.trai.ch/zerr"
)

// Merger implements ports.SnapshotMerger with path copying: only the nodes on
// the way from the root to the merge point are copied, every other subtree is
// shared with the cached snapshot.
type Merger struct {
	sorter ports.ChildSorter
}

var _ ports.SnapshotMerger = (*Merger)(nil)

// New creates a Merger that re-orders children with sorter after insertions.
func New(sorter ports.ChildSorter) *Merger {
	return &Merger{sorter: sorter}
}

// Merge returns a copy of cached in which the subtree at path at is replaced by
// fresh. Missing intermediate directories are created. The branch stamp of at
// is set to now and stamps below it are dropped; CapturedAt is kept.
func (m *Merger) Merge(cached *domain.Snapshot, fresh *domain.TreeNode, at string, now time.Time) (*domain.Snapshot, error) {
	if cached == nil || cached.Tree == nil || fresh == nil {
		return nil, zerr.Wrap(domain.ErrNothingToMerge, "cannot merge")
	}

	at = filepath.Clean(at)
	rel, ok := domain.RelativeTo(cached.Root, at)
	if !ok {
		err := zerr.Wrap(domain.ErrPathOutsideRoot, "cannot merge")
		err = zerr.With(err, "path", at)
		return nil, zerr.With(err, "root", cached.Root)
	}

	tree, err := m.replace(cached.Tree, domain.SplitRelative(rel), fresh)
	if err != nil {
		return nil, zerr.With(err, "path", at)
	}

	out := cached.WithTree(tree)
	for branch := range out.Branches {
		if domain.IsWithin(at, branch) {
			delete(out.Branches, branch)
		}
	}
	out.Branches[at] = now

	return out, nil
}

// replace returns a copy of node whose descendant at parts is fresh. Files and
// inaccessible entries on the way become directories; symlinks are never
// followed or rewritten.
func (m *Merger) replace(node *domain.TreeNode, parts []string, fresh *domain.TreeNode) (*domain.TreeNode, error) {
	if len(parts) == 0 {
		return fresh, nil
	}
	if node.Kind == domain.KindSymlink {
		return nil, zerr.With(zerr.Wrap(domain.ErrSymlinkOnPath, "cannot merge"), "link", node.Path)
	}

	cp := *node
	cp.Truncated = false
	if cp.Kind != domain.KindDirectory {
		cp.Kind = domain.KindDirectory
		cp.Size = 0
		cp.HasSize = false
		cp.Cause = ""
		cp.Children = nil
	}

	children := slices.Clone(cp.Children)
	old, idx := cp.Child(parts[0])

	next := old
	if next == nil {
		next = domain.NewDirectory(filepath.Join(cp.Path, parts[0]))
	}
	merged, err := m.replace(next, parts[1:], fresh)
	if err != nil {
		return nil, err
	}

	if old == nil {
		children = append(children, merged)
	} else {
		children[idx] = merged
	}
	if old == nil || old.Kind.IsDirLike() != merged.Kind.IsDirLike() {
		children = m.sorter.Sort(children)
	}

	cp.Children = children
	return &cp, nil
}
