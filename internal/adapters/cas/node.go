package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ptree/internal/adapters/codec"
	"go.trai.ch/ptree/internal/adapters/config"
	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/core/ports"
)

// NodeID is the unique identifier for the snapshot store Graft node.
const NodeID graft.ID = "adapter.snapshot_store"

func init() {
	graft.Register(graft.Node[ports.SnapshotStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{codec.NodeID, config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.SnapshotStore, error) {
			c, err := graft.Dep[ports.SnapshotCodec](ctx)
			if err != nil {
				return nil, err
			}

			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			return NewStore(cfg.CacheSettings(), c), nil
		},
	})
}
