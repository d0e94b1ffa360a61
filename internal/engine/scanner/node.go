package scanner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ptree/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ptree/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ptree/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ptree/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ptree/internal/core/ports"
	"go.trai.ch/ptree/internal/engine/merger"
)

// NodeID is the unique identifier for the scan engine Graft node.
const NodeID graft.ID = "engine.scanner"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.NodeID,
			cas.NodeID,
			merger.NodeID,
			telemetry.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Engine, error) {
			walker, err := graft.Dep[ports.Walker](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.SnapshotStore](ctx)
			if err != nil {
				return nil, err
			}
			m, err := graft.Dep[ports.SnapshotMerger](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(walker, store, m, tracer, log), nil
		},
	})
}
