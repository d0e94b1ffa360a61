// Package codec serializes snapshots into the versioned cache file format.
//
// A record is laid out as
//
//	[u32 version][u32 root length][root path][i64 capture time, unix nanos][zstd payload]
//
// with little-endian integers. The payload is protobuf wire format written
// directly with protowire. Node paths are not stored; they are rebuilt from
// the root path and the names along the way.
package codec

import (
	"encoding/binary"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/zerr"
	"google.golang.org/protobuf/encoding/protowire"
)

// Payload field numbers.
const (
	fieldFingerprint protowire.Number = 1
	fieldBranch      protowire.Number = 2
	fieldTree        protowire.Number = 3
)

// Branch field numbers.
const (
	fieldBranchPath  protowire.Number = 1
	fieldBranchNanos protowire.Number = 2
)

// Node field numbers.
const (
	fieldName      protowire.Number = 1
	fieldKind      protowire.Number = 2
	fieldSize      protowire.Number = 3
	fieldTruncated protowire.Number = 4
	fieldCause     protowire.Number = 5
	fieldChild     protowire.Number = 6
)

const (
	headerFixedLen = 4 + 4 + 8
	// maxNesting bounds recursion while decoding untrusted input.
	maxNesting = 4096
	// maxPayload bounds the decompressed payload size.
	maxPayload = 1 << 30
)

// Codec implements ports.SnapshotCodec.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New creates a Codec. The zstd encoder and decoder are reused across calls.
func New() (*Codec, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create zstd encoder")
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxPayload),
	)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create zstd decoder")
	}
	return &Codec{encoder: enc, decoder: dec}, nil
}

// Encode serializes s.
func (c *Codec) Encode(s *domain.Snapshot) ([]byte, error) {
	if s == nil || s.Tree == nil {
		return nil, zerr.Wrap(domain.ErrCacheEncodeFailed, "snapshot has no tree")
	}

	payload := encodePayload(s)

	out := make([]byte, 0, headerFixedLen+len(s.Root)+len(payload)/2)
	out = binary.LittleEndian.AppendUint32(out, domain.SnapshotVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(s.Root)))
	out = append(out, s.Root...)
	out = binary.LittleEndian.AppendUint64(out, uint64(s.CapturedAt.UnixNano()))
	return c.encoder.EncodeAll(payload, out), nil
}

// Decode parses a record produced by Encode. A record written by another
// format version fails with domain.ErrVersionMismatch; anything else that
// cannot be parsed fails with domain.ErrCacheCorrupt.
func (c *Codec) Decode(data []byte) (*domain.Snapshot, error) {
	if len(data) < 4 {
		return nil, corrupt("truncated header")
	}
	version := binary.LittleEndian.Uint32(data)
	if version != domain.SnapshotVersion {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrVersionMismatch, "unsupported snapshot"),
			"found", version), "expected", domain.SnapshotVersion)
	}
	if len(data) < headerFixedLen {
		return nil, corrupt("truncated header")
	}
	rootLen := int(binary.LittleEndian.Uint32(data[4:]))
	rest := data[8:]
	if rootLen == 0 || len(rest) < rootLen+8 {
		return nil, corrupt("truncated root path")
	}
	root := string(rest[:rootLen])
	rest = rest[rootLen:]
	captured := int64(binary.LittleEndian.Uint64(rest))
	rest = rest[8:]

	payload, err := c.decoder.DecodeAll(rest, nil)
	if err != nil {
		return nil, zerr.With(corrupt("undecodable payload"), domain.DetailKey, err.Error())
	}

	s := &domain.Snapshot{
		Root:       root,
		CapturedAt: time.Unix(0, captured),
		Version:    version,
		Branches:   make(map[string]time.Time),
	}
	if err := decodePayload(payload, s); err != nil {
		return nil, err
	}
	if s.Tree == nil {
		return nil, corrupt("missing tree")
	}
	return s, nil
}

func corrupt(reason string) error {
	return zerr.Wrap(domain.ErrCacheCorrupt, reason)
}

func encodePayload(s *domain.Snapshot) []byte {
	var e nodeEncoder
	treeSize := e.measure(s.Tree)

	keys := make([]string, 0, len(s.Branches))
	for k := range s.Branches {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	b := make([]byte, 0, protowire.SizeFixed64()+treeSize+16+len(keys)*32)
	b = protowire.AppendTag(b, fieldFingerprint, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, s.Fingerprint)

	for _, k := range keys {
		var br []byte
		br = protowire.AppendTag(br, fieldBranchPath, protowire.BytesType)
		br = protowire.AppendString(br, k)
		br = protowire.AppendTag(br, fieldBranchNanos, protowire.VarintType)
		br = protowire.AppendVarint(br, uint64(s.Branches[k].UnixNano()))
		b = protowire.AppendTag(b, fieldBranch, protowire.BytesType)
		b = protowire.AppendBytes(b, br)
	}

	b = protowire.AppendTag(b, fieldTree, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(treeSize))
	return e.write(b, s.Tree)
}

// nodeEncoder writes nested node messages in one pass after measuring every
// message size in preorder.
type nodeEncoder struct {
	sizes  []int
	cursor int
}

func (e *nodeEncoder) measure(n *domain.TreeNode) int {
	idx := len(e.sizes)
	e.sizes = append(e.sizes, 0)

	size := protowire.SizeTag(fieldName) + protowire.SizeBytes(len(n.Name))
	if n.Kind != domain.KindDirectory {
		size += protowire.SizeTag(fieldKind) + protowire.SizeVarint(uint64(n.Kind))
	}
	if n.HasSize {
		size += protowire.SizeTag(fieldSize) + protowire.SizeVarint(uint64(n.Size))
	}
	if n.Truncated {
		size += protowire.SizeTag(fieldTruncated) + 1
	}
	if n.Cause != "" {
		size += protowire.SizeTag(fieldCause) + protowire.SizeBytes(len(n.Cause))
	}
	for _, c := range n.Children {
		size += protowire.SizeTag(fieldChild) + protowire.SizeBytes(e.measure(c))
	}

	e.sizes[idx] = size
	return size
}

func (e *nodeEncoder) write(b []byte, n *domain.TreeNode) []byte {
	e.cursor++

	b = protowire.AppendTag(b, fieldName, protowire.BytesType)
	b = protowire.AppendString(b, n.Name)
	if n.Kind != domain.KindDirectory {
		b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(n.Kind))
	}
	if n.HasSize {
		b = protowire.AppendTag(b, fieldSize, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(n.Size))
	}
	if n.Truncated {
		b = protowire.AppendTag(b, fieldTruncated, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	if n.Cause != "" {
		b = protowire.AppendTag(b, fieldCause, protowire.BytesType)
		b = protowire.AppendString(b, n.Cause)
	}
	for _, c := range n.Children {
		b = protowire.AppendTag(b, fieldChild, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(e.sizes[e.cursor]))
		b = e.write(b, c)
	}
	return b
}

func decodePayload(b []byte, s *domain.Snapshot) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return corrupt(protowire.ParseError(n).Error())
		}
		b = b[n:]

		switch {
		case num == fieldFingerprint && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return corrupt(protowire.ParseError(n).Error())
			}
			s.Fingerprint = v
			b = b[n:]
		case num == fieldBranch && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return corrupt(protowire.ParseError(n).Error())
			}
			path, at, err := decodeBranch(v)
			if err != nil {
				return err
			}
			s.Branches[path] = at
			b = b[n:]
		case num == fieldTree && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return corrupt(protowire.ParseError(n).Error())
			}
			tree, err := decodeNode(v, 0)
			if err != nil {
				return err
			}
			tree.Path = filepath.Clean(s.Root)
			if err := rebase(tree); err != nil {
				return err
			}
			s.Tree = tree
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return corrupt(protowire.ParseError(n).Error())
			}
			b = b[n:]
		}
	}
	return nil
}

func decodeBranch(b []byte) (string, time.Time, error) {
	var path string
	var nanos uint64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", time.Time{}, corrupt(protowire.ParseError(n).Error())
		}
		b = b[n:]
		switch {
		case num == fieldBranchPath && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return "", time.Time{}, corrupt(protowire.ParseError(n).Error())
			}
			path = v
			b = b[n:]
		case num == fieldBranchNanos && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return "", time.Time{}, corrupt(protowire.ParseError(n).Error())
			}
			nanos = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return "", time.Time{}, corrupt(protowire.ParseError(n).Error())
			}
			b = b[n:]
		}
	}
	if path == "" {
		return "", time.Time{}, corrupt("branch without path")
	}
	return path, time.Unix(0, int64(nanos)), nil
}

func decodeNode(b []byte, depth int) (*domain.TreeNode, error) {
	if depth > maxNesting {
		return nil, corrupt("tree nested too deeply")
	}
	node := &domain.TreeNode{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, corrupt(protowire.ParseError(n).Error())
		}
		b = b[n:]

		switch {
		case num == fieldName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n).Error())
			}
			node.Name = v
			b = b[n:]
		case num == fieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n).Error())
			}
			if v > uint64(domain.KindSymlink) {
				return nil, corrupt("unknown node kind")
			}
			node.Kind = domain.NodeKind(v)
			b = b[n:]
		case num == fieldSize && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n).Error())
			}
			node.Size = int64(v)
			node.HasSize = true
			b = b[n:]
		case num == fieldTruncated && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n).Error())
			}
			node.Truncated = protowire.DecodeBool(v)
			b = b[n:]
		case num == fieldCause && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n).Error())
			}
			node.Cause = v
			b = b[n:]
		case num == fieldChild && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n).Error())
			}
			child, err := decodeNode(v, depth+1)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n).Error())
			}
			b = b[n:]
		}
	}
	return node, nil
}

// rebase fills in child paths below n from the names.
func rebase(n *domain.TreeNode) error {
	for _, c := range n.Children {
		if c.Name == "" || c.Name == "." || c.Name == ".." || strings.ContainsRune(c.Name, filepath.Separator) {
			return zerr.With(corrupt("invalid entry name"), "parent", n.Path)
		}
		c.Path = filepath.Join(n.Path, c.Name)
		if err := rebase(c); err != nil {
			return err
		}
	}
	return nil
}
