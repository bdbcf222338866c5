package common

import (
	"context"
	"encoding/json"

	"github.com/slotdraw/backend/pkg/pubsub"
	"github.com/slotdraw/backend/pkg/xcontext"
)

// Publish sends an event keyed by its drawing. Events are published after the
// state change is committed, so a failure is only logged.
func Publish(ctx context.Context, publisher pubsub.Publisher, topic, drawingID string, event any) {
	if publisher == nil {
		return
	}

	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal %s event: %v", topic, err)
		return
	}

	err = publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(drawingID), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish %s event of drawing %s: %v", topic, drawingID, err)
	}
}
