package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/inventory/internal/logging"
)

const (
	TopicAccountEvents = "account_events"
	TopicProductEvents = "product_events"

	publishTimeout = 5 * time.Second
)

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// publish is best effort: a broker outage is logged and never fails the
// operation that produced the event.
func publish(ctx context.Context, p Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
