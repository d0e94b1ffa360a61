package ports

import (
	"time"

	"go.trai.ch/ptree/internal/core/domain"
)

//go:generate mockgen -source=merger.go -destination=mocks/mock_merger.go -package=mocks

// SnapshotMerger grafts a freshly walked subtree into a cached snapshot.
type SnapshotMerger interface {
	// Merge returns a new snapshot in which the subtree at path is fresh.
	// The cached snapshot is left untouched.
	Merge(cached *domain.Snapshot, fresh *domain.TreeNode, at string, now time.Time) (*domain.Snapshot, error)
}
