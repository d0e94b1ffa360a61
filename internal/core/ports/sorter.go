package ports

import "go.trai.ch/ptree/internal/core/domain"

// ChildSorter orders the children of a node.
//
//go:generate mockgen -source=sorter.go -destination=mocks/mock_sorter.go -package=mocks
type ChildSorter interface {
	// Sort returns children in display order. The input slice is not modified.
	Sort(children []*domain.TreeNode) []*domain.TreeNode
}
