package domain

import "time"

// ScanMode is the strategy the engine used to produce a result.
type ScanMode uint8

const (
	// ModeFullScan walked the whole scan root.
	ModeFullScan ScanMode = iota
	// ModeIncremental walked only the target and merged it into the cached snapshot.
	ModeIncremental
	// ModeCacheHit served the target from the cached snapshot.
	ModeCacheHit
)

// String returns a human-readable name of the mode.
func (m ScanMode) String() string {
	switch m {
	case ModeFullScan:
		return "full scan"
	case ModeIncremental:
		return "incremental scan"
	case ModeCacheHit:
		return "cache hit"
	default:
		return "unknown"
	}
}

// WalkOptions controls a single walk pass.
type WalkOptions struct {
	// MaxDepth bounds expansion below the walk root. Unlimited disables the bound.
	MaxDepth int
	// Skip lists entry names (or glob patterns) excluded from the walk, compared case-insensitively.
	Skip []string
	// Threads bounds the number of concurrently expanded directories.
	Threads int
}

// Timings reports the elapsed time of each engine phase.
type Timings struct {
	CacheLoad time.Duration
	Traversal time.Duration
	Merge     time.Duration
	CacheSave time.Duration
}
