package sorter

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ptree/internal/adapters/config" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/core/ports"
)

// NodeID is the unique identifier for the child sorter Graft node.
const NodeID graft.ID = "engine.sorter"

func init() {
	graft.Register(graft.Node[ports.ChildSorter]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.ChildSorter, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return New(cfg.SortThreshold, cfg.SortThreads), nil
		},
	})
}
