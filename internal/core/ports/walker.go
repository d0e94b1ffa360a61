package ports

import "go.trai.ch/ptree/internal/core/domain"

// Walker enumerates a directory subtree into a tree.
//
//go:generate mockgen -source=walker.go -destination=mocks/mock_walker.go -package=mocks
type Walker interface {
	// Walk scans root and returns its fully materialized tree.
	// Per-entry failures are recorded on the affected nodes; only an unreadable
	// root is returned as an error.
	Walk(root string, opts domain.WalkOptions) (*domain.TreeNode, error)
}
