package bus

import (
	"context"

	"github.com/yungbote/neurobridge-milestones/internal/realtime"
)

// Bus fans realtime messages out across processes.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	// StartForwarder delivers every published message to onMsg until ctx ends.
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
