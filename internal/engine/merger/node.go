package merger

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ptree/internal/core/ports"
	"go.trai.ch/ptree/internal/engine/sorter"
)

// NodeID is the unique identifier for the snapshot merger Graft node.
const NodeID graft.ID = "engine.merger"

func init() {
	graft.Register(graft.Node[ports.SnapshotMerger]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{sorter.NodeID},
		Run: func(ctx context.Context) (ports.SnapshotMerger, error) {
			s, err := graft.Dep[ports.ChildSorter](ctx)
			if err != nil {
				return nil, err
			}
			return New(s), nil
		},
	})
}
