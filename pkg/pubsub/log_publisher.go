package pubsub

import (
	"context"

	"github.com/slotdraw/backend/pkg/xcontext"
)

// LogPublisher only logs the published packs. It is used when no broker is
// configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, pack *Pack) error {
	xcontext.Logger(ctx).Debugf("Publish to %s: key=%s msg=%s", topic, pack.Key, pack.Msg)
	return nil
}
