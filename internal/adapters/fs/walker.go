// Package fs provides the file system walker that builds directory trees.
package fs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Walker implements ports.Walker. Directory expansions run on a bounded
// errgroup; a saturated pool makes the submitting goroutine expand inline.
type Walker struct {
	sorter ports.ChildSorter
}

// NewWalker creates a new Walker that orders children with sorter.
func NewWalker(sorter ports.ChildSorter) *Walker {
	return &Walker{sorter: sorter}
}

// Walk scans root and returns its tree once every expansion has joined.
func (w *Walker) Walk(root string, opts domain.WalkOptions) (*domain.TreeNode, error) {
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		return nil, rootInaccessible(root, err)
	}
	if !info.IsDir() {
		return nil, zerr.With(zerr.Wrap(domain.ErrRootNotDirectory, "cannot walk"), "path", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, rootInaccessible(root, err)
	}

	p := &pass{
		sorter:   w.sorter,
		skip:     domain.NewSkipSet(opts.Skip),
		maxDepth: opts.MaxDepth,
	}
	p.g.SetLimit(max(opts.Threads, 1))

	tree := domain.NewDirectory(root)
	p.expand(tree, entries, 0)
	_ = p.g.Wait()

	return tree, nil
}

// pass holds the state of a single Walk call. Every node is written only by
// the goroutine that expands it.
type pass struct {
	sorter   ports.ChildSorter
	skip     domain.SkipSet
	maxDepth int
	g        errgroup.Group
}

func (p *pass) expand(dir *domain.TreeNode, entries []os.DirEntry, depth int) {
	children := make([]*domain.TreeNode, 0, len(entries))
	for _, e := range entries {
		if p.skip.Match(e.Name()) {
			continue
		}
		children = append(children, entryNode(dir.Path, e))
	}
	dir.Children = p.sorter.Sort(children)

	next := depth + 1
	for _, c := range dir.Children {
		if c.Kind != domain.KindDirectory {
			continue
		}
		if p.maxDepth != domain.Unlimited && next > p.maxDepth {
			c.Truncated = true
			continue
		}
		p.schedule(c, next)
	}
}

func (p *pass) schedule(dir *domain.TreeNode, depth int) {
	if p.g.TryGo(func() error {
		p.visit(dir, depth)
		return nil
	}) {
		return
	}
	p.visit(dir, depth)
}

func (p *pass) visit(dir *domain.TreeNode, depth int) {
	entries, err := os.ReadDir(dir.Path)
	if err != nil {
		dir.Kind = domain.KindInaccessible
		dir.Cause = causeOf(err)
		return
	}
	p.expand(dir, entries, depth)
}

// entryNode classifies a directory entry without following symlinks.
func entryNode(parent string, e os.DirEntry) *domain.TreeNode {
	path := filepath.Join(parent, e.Name())
	n := &domain.TreeNode{Name: e.Name(), Path: path}

	switch {
	case e.Type()&fs.ModeSymlink != 0:
		target, err := os.Stat(path)
		if err != nil || target.IsDir() {
			n.Kind = domain.KindSymlink
			return n
		}
		n.Kind = domain.KindFile
		n.Size = target.Size()
		n.HasSize = true
	case e.IsDir():
		n.Kind = domain.KindDirectory
	default:
		info, err := e.Info()
		if err != nil {
			n.Kind = domain.KindInaccessible
			n.Cause = causeOf(err)
			return n
		}
		n.Kind = domain.KindFile
		n.Size = info.Size()
		n.HasSize = true
	}
	return n
}

func rootInaccessible(root string, err error) error {
	wrapped := zerr.With(zerr.Wrap(domain.ErrRootInaccessible, "cannot walk"), "path", root)
	return zerr.With(wrapped, domain.DetailKey, causeOf(err))
}

// causeOf strips the path from os errors; the node already carries it.
func causeOf(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
