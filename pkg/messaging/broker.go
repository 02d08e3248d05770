package messaging

import (
	"context"
	"time"
)

// Channels booking events are published on.
const (
	ChannelBookingConfirmed = "booking.confirmed"
	ChannelNavigateNext     = "booking.navigate_next"
	ChannelCartChanged      = "cart.changed"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Publisher defines the interface for publishing messages
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

type Message struct {
	Type       string      `json:"type"`
	SessionID  string      `json:"session_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}
