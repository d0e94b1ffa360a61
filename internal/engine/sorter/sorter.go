// Package sorter orders the children of tree nodes.
package sorter

import (
	"container/heap"
	"slices"
	"strings"

	"go.trai.ch/ptree/internal/core/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
)

// Sorter implements ports.ChildSorter. Directory-like entries come first, then
// names compare case-insensitively, then the enumeration index breaks ties.
// Lists with at least Threshold entries are sorted in parallel chunks and
// merged; both strategies yield the same order.
type Sorter struct {
	threshold int
	threads   int
}

// New creates a Sorter that switches to the parallel strategy at threshold
// children and uses at most threads workers for it.
func New(threshold, threads int) *Sorter {
	if threshold <= 0 {
		threshold = domain.DefaultSortThreshold
	}
	if threads < 1 {
		threads = 1
	}
	return &Sorter{threshold: threshold, threads: threads}
}

// Threshold returns the child count at which sorting runs in parallel.
func (s *Sorter) Threshold() int {
	return s.threshold
}

// Sort returns children in display order. The input slice is not modified.
func (s *Sorter) Sort(children []*domain.TreeNode) []*domain.TreeNode {
	if len(children) < 2 {
		return slices.Clone(children)
	}
	if len(children) < s.threshold || s.threads == 1 {
		return s.sequential(children)
	}
	return s.parallel(children)
}

type key struct {
	dirLike bool
	folded  string
	index   int
	node    *domain.TreeNode
}

func compareKeys(a, b *key) int {
	if a.dirLike != b.dirLike {
		if a.dirLike {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.folded, b.folded); c != 0 {
		return c
	}
	return a.index - b.index
}

// makeKeys folds names of children[lo:hi]. A cases.Caser is stateful, so
// every caller gets its own.
func makeKeys(children []*domain.TreeNode, lo, hi int) []key {
	caser := cases.Fold()
	keys := make([]key, 0, hi-lo)
	for i := lo; i < hi; i++ {
		c := children[i]
		keys = append(keys, key{
			dirLike: c.Kind.IsDirLike(),
			folded:  caser.String(c.Name),
			index:   i,
			node:    c,
		})
	}
	return keys
}

func (s *Sorter) sequential(children []*domain.TreeNode) []*domain.TreeNode {
	keys := makeKeys(children, 0, len(children))
	slices.SortFunc(keys, func(a, b key) int { return compareKeys(&a, &b) })

	out := make([]*domain.TreeNode, len(keys))
	for i := range keys {
		out[i] = keys[i].node
	}
	return out
}

func (s *Sorter) parallel(children []*domain.TreeNode) []*domain.TreeNode {
	n := len(children)
	chunks := min(s.threads, n)
	size := (n + chunks - 1) / chunks

	sorted := make([][]key, (n+size-1)/size)

	var g errgroup.Group
	g.SetLimit(s.threads)
	for i := range sorted {
		lo := i * size
		hi := min(lo+size, n)
		g.Go(func() error {
			keys := makeKeys(children, lo, hi)
			slices.SortFunc(keys, func(a, b key) int { return compareKeys(&a, &b) })
			sorted[i] = keys
			return nil
		})
	}
	_ = g.Wait()

	return mergeChunks(sorted, n)
}

type cursor struct {
	chunk int
	pos   int
}

type cursorHeap struct {
	chunks  [][]key
	cursors []cursor
}

func (h *cursorHeap) Len() int { return len(h.cursors) }

func (h *cursorHeap) Less(i, j int) bool {
	a, b := h.cursors[i], h.cursors[j]
	if c := compareKeys(&h.chunks[a.chunk][a.pos], &h.chunks[b.chunk][b.pos]); c != 0 {
		return c < 0
	}
	return a.chunk < b.chunk
}

func (h *cursorHeap) Swap(i, j int) { h.cursors[i], h.cursors[j] = h.cursors[j], h.cursors[i] }

func (h *cursorHeap) Push(x any) { h.cursors = append(h.cursors, x.(cursor)) }

func (h *cursorHeap) Pop() any {
	old := h.cursors
	last := old[len(old)-1]
	h.cursors = old[:len(old)-1]
	return last
}

// mergeChunks performs a k-way merge of individually sorted chunks.
func mergeChunks(chunks [][]key, total int) []*domain.TreeNode {
	h := &cursorHeap{chunks: chunks}
	for i, c := range chunks {
		if len(c) > 0 {
			h.cursors = append(h.cursors, cursor{chunk: i})
		}
	}
	heap.Init(h)

	out := make([]*domain.TreeNode, 0, total)
	for h.Len() > 0 {
		top := &h.cursors[0]
		out = append(out, chunks[top.chunk][top.pos].node)
		top.pos++
		if top.pos == len(chunks[top.chunk]) {
			heap.Pop(h)
			continue
		}
		heap.Fix(h, 0)
	}
	return out
}
