package ports

import (
	"time"

	"go.trai.ch/ptree/internal/core/domain"
)

// SnapshotStore persists one snapshot per scan root.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type SnapshotStore interface {
	// Lookup loads the snapshot for root and classifies it for target at now.
	// A ttl of zero uses the store's configured TTL. A missing record yields
	// domain.Missing and no error; an unreadable record yields domain.Missing
	// together with the decode error.
	Lookup(root, target string, now time.Time, ttl time.Duration) (domain.CacheLookup, error)

	// Save replaces the record for the snapshot's root.
	Save(s *domain.Snapshot) error

	// Path returns the file that holds the record for root.
	Path(root string) string

	// Clear removes every record.
	Clear() error
}
