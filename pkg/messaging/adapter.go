package messaging

import (
	"context"
	"time"
)

// EventPublisher wraps payloads in a Message and publishes them on the channel
// named by the event type.
type EventPublisher struct {
	broker Broker
	now    func() time.Time
}

func NewEventPublisher(broker Broker) *EventPublisher {
	return &EventPublisher{broker: broker, now: time.Now}
}

func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	return p.PublishFor(ctx, "", eventType, payload)
}

// PublishFor publishes an event scoped to one visitor session.
func (p *EventPublisher) PublishFor(ctx context.Context, sessionID, eventType string, payload interface{}) error {
	return p.broker.Publish(ctx, eventType, Message{
		Type:       eventType,
		SessionID:  sessionID,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	})
}
