package session

import (
	"context"
	"time"
)

// Storage is the key/value adapter session state is persisted through.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Pinger is implemented by storages that can report health.
type Pinger interface {
	Ping(ctx context.Context) error
}
