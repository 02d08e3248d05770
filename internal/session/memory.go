package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStorage keeps session state in process. Used for single-node
// deployments and tests.
type MemoryStorage struct {
	cache *cache.Cache
}

func NewMemoryStorage(defaultTTL, cleanupInterval time.Duration) *MemoryStorage {
	return &MemoryStorage{
		cache: cache.New(defaultTTL, cleanupInterval),
	}
}

func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

func (m *MemoryStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	b := make([]byte, len(value))
	copy(b, value)
	m.cache.Set(key, b, ttl)
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		m.cache.Delete(k)
	}
	return nil
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of live entries.
func (m *MemoryStorage) Len() int {
	return m.cache.ItemCount()
}
