package codec

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ptree/internal/core/ports"
)

// NodeID is the unique identifier for the snapshot codec Graft node.
const NodeID graft.ID = "adapter.codec"

func init() {
	graft.Register(graft.Node[ports.SnapshotCodec]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SnapshotCodec, error) {
			c, err := New()
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	})
}
