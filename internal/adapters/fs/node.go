package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ptree/internal/core/ports"
	"go.trai.ch/ptree/internal/engine/sorter" //nolint:depguard // Wired in adapter wiring
)

// NodeID is the unique identifier for the walker Graft node.
const NodeID graft.ID = "adapter.walker"

func init() {
	graft.Register(graft.Node[ports.Walker]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{sorter.NodeID},
		Run: func(ctx context.Context) (ports.Walker, error) {
			s, err := graft.Dep[ports.ChildSorter](ctx)
			if err != nil {
				return nil, err
			}
			return NewWalker(s), nil
		},
	})
}
