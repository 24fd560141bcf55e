package service

import (
	"context"

	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// publish never fails the caller; delivery problems are only logged.
func publish(ctx context.Context, p events.Publisher, topic string, ev events.Event) {
	if p == nil || topic == "" {
		return
	}
	if err := p.PublishEvent(ctx, topic, ev.ID, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}
