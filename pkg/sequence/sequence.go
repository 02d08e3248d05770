// Package sequence hands out monotonically increasing request numbers per key so
// callers can drop responses that a later request has already superseded.
package sequence

import (
	"sync"
	"time"
)

// Tracker records the latest sequence number issued for each key.
type Tracker struct {
	mu      sync.Mutex
	latest  map[string]entry
	counter uint64
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	seq  uint64
	seen time.Time
}

// NewTracker creates a tracker. Keys idle longer than ttl are forgotten on Sweep.
func NewTracker(ttl time.Duration) *Tracker {
	return &Tracker{
		latest: make(map[string]entry),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Begin issues a new sequence number for key and marks it as the latest.
func (t *Tracker) Begin(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counter++
	t.latest[key] = entry{seq: t.counter, seen: t.now()}
	return t.counter
}

// IsCurrent reports whether seq is still the latest number issued for key.
func (t *Tracker) IsCurrent(key string, seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.latest[key]
	return ok && e.seq == seq
}

// Sweep drops keys that have not been used within the ttl.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.ttl)
	removed := 0
	for k, e := range t.latest {
		if e.seen.Before(cutoff) {
			delete(t.latest, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.latest)
}
