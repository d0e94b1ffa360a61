package domain

import (
	"path/filepath"
	"time"
)

// Freshness classifies a cached snapshot against a TTL for a requested path.
type Freshness uint8

const (
	// Missing means there is no usable snapshot.
	Missing Freshness = iota
	// Fresh means the snapshot is younger than the TTL.
	Fresh
	// StaleIncremental means the requested subtree should be rescanned and merged.
	StaleIncremental
	// StaleFull means the whole root should be rescanned.
	StaleFull
)

// String returns the name of the freshness class.
func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case StaleIncremental:
		return "stale-incremental"
	case StaleFull:
		return "stale-full"
	default:
		return "missing"
	}
}

// Classify computes the freshness of s for target at now.
// It also returns the age used for the decision.
func Classify(s *Snapshot, target string, now time.Time, ttl time.Duration) (Freshness, time.Duration) {
	if s == nil || s.Tree == nil {
		return Missing, 0
	}
	age := now.Sub(s.CapturedFor(target))
	if age < ttl {
		return Fresh, age
	}
	if filepath.Clean(target) == filepath.Clean(s.Root) {
		return StaleFull, age
	}
	return StaleIncremental, age
}
