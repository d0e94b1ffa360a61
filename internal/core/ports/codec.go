package ports

import "go.trai.ch/ptree/internal/core/domain"

// SnapshotCodec converts snapshots to and from their persisted form.
//
//go:generate mockgen -source=codec.go -destination=mocks/mock_codec.go -package=mocks
type SnapshotCodec interface {
	Encode(s *domain.Snapshot) ([]byte, error)
	Decode(data []byte) (*domain.Snapshot, error)
}
