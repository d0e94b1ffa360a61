package domain

import (
	"path/filepath"
	"strings"
)

// NodeKind classifies an entry recorded in a tree.
type NodeKind uint8

const (
	// KindDirectory is a directory that was expanded or truncated by the depth bound.
	KindDirectory NodeKind = iota
	// KindFile is a regular file, or a symlink that resolves to one.
	KindFile
	// KindInaccessible is an entry whose metadata or listing could not be read.
	KindInaccessible
	// KindSymlink is a symlink that was not followed.
	KindSymlink
)

// String returns the lowercase name of the kind.
func (k NodeKind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindInaccessible:
		return "inaccessible"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// IsDirLike reports whether the kind sorts with directories.
func (k NodeKind) IsDirLike() bool {
	return k != KindFile
}

// TreeNode is one entry of a scanned tree. A node exclusively owns its children.
type TreeNode struct {
	Name      string
	Path      string
	Kind      NodeKind
	Size      int64
	HasSize   bool
	Truncated bool
	Cause     string
	Children  []*TreeNode
}

// NewDirectory returns an empty directory node for path.
func NewDirectory(path string) *TreeNode {
	return &TreeNode{
		Name: BaseName(path),
		Path: path,
		Kind: KindDirectory,
	}
}

// NewInaccessible returns a node recording that path could not be read.
func NewInaccessible(path string, cause error) *TreeNode {
	n := &TreeNode{
		Name: BaseName(path),
		Path: path,
		Kind: KindInaccessible,
	}
	if cause != nil {
		n.Cause = cause.Error()
	}
	return n
}

// BaseName returns the last element of path. A volume root keeps its full path as name.
func BaseName(path string) string {
	name := filepath.Base(path)
	if name == string(filepath.Separator) || name == "." || strings.HasSuffix(name, ":") {
		return path
	}
	return name
}

// Child returns the direct child with the given name.
func (n *TreeNode) Child(name string) (*TreeNode, int) {
	for i, c := range n.Children {
		if c.Name == name {
			return c, i
		}
	}
	return nil, -1
}

// Find descends from n along the path components of target.
// It returns nil when target is not n or one of its descendants.
func (n *TreeNode) Find(target string) *TreeNode {
	rel, ok := RelativeTo(n.Path, target)
	if !ok {
		return nil
	}
	cur := n
	for _, part := range SplitRelative(rel) {
		next, _ := cur.Child(part)
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// Walk visits n and its descendants in order. Returning false from fn stops
// descent below the visited node.
func (n *TreeNode) Walk(fn func(node *TreeNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *TreeNode) walk(fn func(node *TreeNode, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Clone returns a deep copy of n.
func (n *TreeNode) Clone() *TreeNode {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Children != nil {
		cp.Children = make([]*TreeNode, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return &cp
}

// Equal reports whether two trees hold the same entries in the same order.
func (n *TreeNode) Equal(o *TreeNode) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Name != o.Name || n.Path != o.Path || n.Kind != o.Kind ||
		n.Size != o.Size || n.HasSize != o.HasSize ||
		n.Truncated != o.Truncated || n.Cause != o.Cause ||
		len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Stats aggregates node counts of a tree.
type Stats struct {
	Directories  int
	Files        int
	Inaccessible int
	Symlinks     int
	Bytes        int64
}

// Total returns the number of entries below and including the root.
func (s Stats) Total() int {
	return s.Directories + s.Files + s.Inaccessible + s.Symlinks
}

// Count returns entry counts for n and its descendants.
func (n *TreeNode) Count() Stats {
	var s Stats
	n.Walk(func(node *TreeNode, _ int) bool {
		switch node.Kind {
		case KindDirectory:
			s.Directories++
		case KindFile:
			s.Files++
		case KindInaccessible:
			s.Inaccessible++
		case KindSymlink:
			s.Symlinks++
		}
		if node.HasSize {
			s.Bytes += node.Size
		}
		return true
	})
	return s
}

// Prune returns a view of n limited to maxDepth levels below n. Hidden entries
// (names starting with a dot) are dropped unless showHidden is set. A negative
// maxDepth keeps every level. The receiver is not modified.
func (n *TreeNode) Prune(maxDepth int, showHidden bool) *TreeNode {
	return n.prune(maxDepth, showHidden, 0)
}

func (n *TreeNode) prune(maxDepth int, showHidden bool, depth int) *TreeNode {
	cp := *n
	cp.Children = nil
	if maxDepth >= 0 && depth >= maxDepth {
		return &cp
	}
	for _, c := range n.Children {
		if !showHidden && IsHidden(c.Name) {
			continue
		}
		cp.Children = append(cp.Children, c.prune(maxDepth, showHidden, depth+1))
	}
	return &cp
}

// IsHidden reports whether name is a dot entry.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
