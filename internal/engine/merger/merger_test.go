package merger_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/engine/merger"
	"go.trai.ch/ptree/internal/engine/sorter"
)

var (
	fullScan = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	now      = fullScan.Add(2 * time.Hour)
)

func p(rel string) string {
	return filepath.Join(string(filepath.Separator)+"data", filepath.FromSlash(rel))
}

func dir(rel string, children ...*domain.TreeNode) *domain.TreeNode {
	n := domain.NewDirectory(p(rel))
	n.Children = children
	return n
}

func file(rel string, size int64) *domain.TreeNode {
	path := p(rel)
	return &domain.TreeNode{Name: filepath.Base(path), Path: path, Kind: domain.KindFile, Size: size, HasSize: true}
}

// cachedSnapshot holds /data with alpha/, beta/ and a.log.
func cachedSnapshot() *domain.Snapshot {
	tree := dir("",
		dir("alpha", file("alpha/a.txt", 1)),
		dir("beta", dir("beta/b1"), file("beta/b.txt", 2)),
		file("a.log", 3),
	)
	return domain.NewSnapshot(tree, fullScan, 7)
}

func names(n *domain.TreeNode) []string {
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.Name)
	}
	return out
}

func newMerger() *merger.Merger {
	return merger.New(sorter.New(domain.DefaultSortThreshold, 2))
}

func TestMerger_Merge_ReplacesSubtreeOnly(t *testing.T) {
	cached := cachedSnapshot()
	before := cached.Tree.Clone()

	fresh := dir("beta", file("beta/b.txt", 20), file("beta/new.txt", 5))
	got, err := newMerger().Merge(cached, fresh, p("beta"), now)
	require.NoError(t, err)

	assert.True(t, before.Equal(cached.Tree), "cached snapshot must not change")
	assert.NotSame(t, cached.Tree, got.Tree)

	assert.Same(t, cached.Tree.Children[0], got.Tree.Children[0], "alpha is shared")
	assert.Same(t, cached.Tree.Children[2], got.Tree.Children[2], "a.log is shared")
	assert.Same(t, fresh, got.Tree.Children[1])
	assert.Same(t, fresh, got.Slice(p("beta")))

	assert.Equal(t, cached.Root, got.Root)
	assert.Equal(t, cached.Fingerprint, got.Fingerprint)
	assert.Equal(t, fullScan, got.CapturedAt)
	assert.Equal(t, now, got.Branches[p("beta")])
}

func TestMerger_Merge_InsertsMissingBranch(t *testing.T) {
	cached := cachedSnapshot()

	fresh := dir("gamma/deep", file("gamma/deep/x", 1))
	got, err := newMerger().Merge(cached, fresh, p("gamma/deep"), now)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta", "gamma", "a.log"}, names(got.Tree))

	gamma := got.Slice(p("gamma"))
	require.NotNil(t, gamma)
	assert.Equal(t, domain.KindDirectory, gamma.Kind)
	assert.Equal(t, p("gamma"), gamma.Path)
	assert.Same(t, fresh, got.Slice(p("gamma/deep")))

	assert.Equal(t, []string{"alpha", "beta", "a.log"}, names(cached.Tree))
}

func TestMerger_Merge_NonDirectoryIntermediate(t *testing.T) {
	cached := cachedSnapshot()

	fresh := dir("a.log/inner")
	got, err := newMerger().Merge(cached, fresh, p("a.log/inner"), now)
	require.NoError(t, err)

	converted := got.Slice(p("a.log"))
	require.NotNil(t, converted)
	assert.Equal(t, domain.KindDirectory, converted.Kind)
	assert.False(t, converted.HasSize)
	assert.Equal(t, []string{"inner"}, names(converted))
	assert.Equal(t, []string{"a.log", "alpha", "beta"}, names(got.Tree), "re-sorted as a directory")

	orig := cached.Slice(p("a.log"))
	assert.Equal(t, domain.KindFile, orig.Kind)
}

func TestMerger_Merge_SymlinkIntermediate(t *testing.T) {
	cached := cachedSnapshot()
	link := &domain.TreeNode{Name: "link", Path: p("link"), Kind: domain.KindSymlink}
	cached.Tree.Children = append(cached.Tree.Children, link)
	before := cached.Tree.Clone()

	got, err := newMerger().Merge(cached, dir("link/sub"), p("link/sub"), now)
	require.ErrorIs(t, err, domain.ErrSymlinkOnPath)
	assert.Nil(t, got)

	assert.True(t, before.Equal(cached.Tree), "cached snapshot must not change")
	assert.Equal(t, domain.KindSymlink, cached.Slice(p("link")).Kind)
}

func TestMerger_Merge_ClearsTruncatedIntermediate(t *testing.T) {
	cached := cachedSnapshot()
	alpha := cached.Slice(p("alpha"))
	alpha.Truncated = true
	alpha.Children = nil

	fresh := dir("alpha/inner", file("alpha/inner/z", 1))
	got, err := newMerger().Merge(cached, fresh, p("alpha/inner"), now)
	require.NoError(t, err)

	merged := got.Slice(p("alpha"))
	require.NotNil(t, merged)
	assert.False(t, merged.Truncated)
	assert.Equal(t, []string{"inner"}, names(merged))
	assert.False(t, got.Tree.Truncated)

	assert.True(t, cached.Slice(p("alpha")).Truncated, "cached node must not change")
}

func TestMerger_Merge_AtRoot(t *testing.T) {
	cached := cachedSnapshot()
	cached.Branches = map[string]time.Time{p("beta"): fullScan.Add(time.Hour)}

	fresh := dir("", file("only", 1))
	got, err := newMerger().Merge(cached, fresh, p(""), now)
	require.NoError(t, err)

	assert.Same(t, fresh, got.Tree)
	assert.Equal(t, map[string]time.Time{p(""): now}, got.Branches)
}

func TestMerger_Merge_BranchStamps(t *testing.T) {
	cached := cachedSnapshot()
	earlier := fullScan.Add(30 * time.Minute)
	cached.Branches = map[string]time.Time{
		p("beta/b1"): earlier,
		p("alpha"):   earlier,
	}

	got, err := newMerger().Merge(cached, dir("beta"), p("beta"), now)
	require.NoError(t, err)

	assert.Equal(t, map[string]time.Time{
		p("alpha"): earlier,
		p("beta"):  now,
	}, got.Branches)
	assert.Len(t, cached.Branches, 2, "cached stamps must not change")

	assert.Equal(t, now, got.CapturedFor(p("beta/b1")))
	assert.Equal(t, earlier, got.CapturedFor(p("alpha/a.txt")))
	assert.Equal(t, fullScan, got.CapturedFor(p("a.log")))
}

func TestMerger_Merge_OutsideRoot(t *testing.T) {
	_, err := newMerger().Merge(cachedSnapshot(), dir("x"), filepath.Join(string(filepath.Separator)+"elsewhere", "x"), now)
	require.ErrorIs(t, err, domain.ErrPathOutsideRoot)
}

func TestMerger_Merge_NothingToMerge(t *testing.T) {
	m := newMerger()

	_, err := m.Merge(nil, dir("beta"), p("beta"), now)
	require.ErrorIs(t, err, domain.ErrNothingToMerge)

	_, err = m.Merge(cachedSnapshot(), nil, p("beta"), now)
	require.ErrorIs(t, err, domain.ErrNothingToMerge)
}
