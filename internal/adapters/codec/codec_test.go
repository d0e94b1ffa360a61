package codec_test

import (
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ptree/internal/adapters/codec"
	"go.trai.ch/ptree/internal/core/domain"
)

func newCodec(t *testing.T) *codec.Codec {
	t.Helper()
	c, err := codec.New()
	require.NoError(t, err)
	return c
}

func sampleSnapshot() *domain.Snapshot {
	root := filepath.Join(string(filepath.Separator), "vol")
	docs := domain.NewDirectory(filepath.Join(root, "docs"))
	docs.Children = []*domain.TreeNode{
		{Name: "empty.txt", Path: filepath.Join(root, "docs", "empty.txt"), Kind: domain.KindFile, HasSize: true},
		{Name: "guide.md", Path: filepath.Join(root, "docs", "guide.md"), Kind: domain.KindFile, Size: 1 << 40, HasSize: true},
	}
	deep := domain.NewDirectory(filepath.Join(root, "deep"))
	deep.Truncated = true

	tree := domain.NewDirectory(root)
	tree.Children = []*domain.TreeNode{
		deep,
		docs,
		domain.NewInaccessible(filepath.Join(root, "private"), errors.New("permission denied")),
		{Name: "loop", Path: filepath.Join(root, "loop"), Kind: domain.KindSymlink},
		{Name: "Ünïcode файл", Path: filepath.Join(root, "Ünïcode файл"), Kind: domain.KindFile, Size: 3, HasSize: true},
	}

	captured := time.Unix(0, 1767348000123456789)
	s := domain.NewSnapshot(tree, captured, 0xfeedface)
	s.Branches = map[string]time.Time{
		filepath.Join(root, "docs"): captured.Add(90 * time.Minute),
		filepath.Join(root, "deep"): captured.Add(time.Minute),
	}
	return s
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newCodec(t)
	want := sampleSnapshot()

	data, err := c.Encode(want)
	require.NoError(t, err)

	got, err := c.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, want.Root, got.Root)
	assert.True(t, want.CapturedAt.Equal(got.CapturedAt))
	assert.Equal(t, domain.SnapshotVersion, got.Version)
	assert.Equal(t, want.Fingerprint, got.Fingerprint)
	require.Len(t, got.Branches, len(want.Branches))
	for k, v := range want.Branches {
		assert.True(t, v.Equal(got.Branches[k]), k)
	}
	assert.True(t, want.Tree.Equal(got.Tree), "tree differs after round trip")
}

func TestCodec_EncodeIsDeterministic(t *testing.T) {
	c := newCodec(t)
	s := sampleSnapshot()

	a, err := c.Encode(s)
	require.NoError(t, err)
	b, err := c.Encode(s)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCodec_Header(t *testing.T) {
	c := newCodec(t)
	s := sampleSnapshot()

	data, err := c.Encode(s)
	require.NoError(t, err)

	require.Greater(t, len(data), 16+len(s.Root))
	assert.Equal(t, domain.SnapshotVersion, binary.LittleEndian.Uint32(data))
	assert.Equal(t, uint32(len(s.Root)), binary.LittleEndian.Uint32(data[4:]))
	assert.Equal(t, s.Root, string(data[8:8+len(s.Root)]))
	assert.Equal(t, s.CapturedAt.UnixNano(), int64(binary.LittleEndian.Uint64(data[8+len(s.Root):])))
}

func TestCodec_Decode_VersionMismatch(t *testing.T) {
	c := newCodec(t)

	data, err := c.Encode(sampleSnapshot())
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data, domain.SnapshotVersion+1)

	_, err = c.Decode(data)
	require.ErrorIs(t, err, domain.ErrVersionMismatch)
}

func TestCodec_Decode_Corrupt(t *testing.T) {
	c := newCodec(t)
	valid, err := c.Encode(sampleSnapshot())
	require.NoError(t, err)
	rootLen := len(sampleSnapshot().Root)

	flipped := append([]byte(nil), valid...)
	flipped[len(flipped)-6] ^= 0xff

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "only version", data: valid[:4]},
		{name: "cut in root", data: valid[:8+rootLen/2]},
		{name: "cut in payload", data: valid[:len(valid)-10]},
		{name: "garbage payload", data: append(append([]byte(nil), valid[:16+rootLen]...), 0xde, 0xad, 0xbe, 0xef)},
		{name: "flipped payload byte", data: flipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.data)
			require.ErrorIs(t, err, domain.ErrCacheCorrupt)
		})
	}
}

func TestCodec_Encode_RequiresTree(t *testing.T) {
	c := newCodec(t)

	_, err := c.Encode(&domain.Snapshot{Root: "/"})
	require.ErrorIs(t, err, domain.ErrCacheEncodeFailed)
}
