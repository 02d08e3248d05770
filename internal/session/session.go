package session

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"
)

// Keys of the per-session state. Each piece of state lives under its own key.
const (
	KeySelectedCity        = "selected_city"
	KeyHasVisited          = "has_visited"
	KeyShowCityPopup       = "show_city_popup"
	KeyCartItems           = "cart_items"
	KeyBookingWizard       = "booking_wizard"
	KeyAuthToken           = "auth_token"
	KeyMobileNumber        = "mobile_number"
	KeyIsOTPVerified       = "is_otp_verified"
	KeyCookieConsent       = "cookie_consent"
	KeySeasonalBannerShown = "seasonal_banner_shown"
)

// Session is one visitor's view of the storage.
type Session struct {
	id      string
	storage Storage
	ttl     time.Duration
}

func New(id string, storage Storage, ttl time.Duration) *Session {
	return &Session{id: id, storage: storage, ttl: ttl}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) key(name string) string {
	return "session:" + s.id + ":" + name
}

// Raw returns the stored bytes under name.
func (s *Session) Raw(ctx context.Context, name string) ([]byte, bool, error) {
	return s.storage.Get(ctx, s.key(name))
}

// Load decodes the value under name into v. It reports false when nothing is stored.
func (s *Session) Load(ctx context.Context, name string, v interface{}) (bool, error) {
	b, ok, err := s.storage.Get(ctx, s.key(name))
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, &CorruptError{Key: name, Err: err}
	}
	return true, nil
}

// Save encodes v under name.
func (s *Session) Save(ctx context.Context, name string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := s.storage.Set(ctx, s.key(name), b, s.ttl); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Remove deletes the given keys.
func (s *Session) Remove(ctx context.Context, names ...string) error {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = s.key(n)
	}
	if err := s.storage.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to delete %v: %w", names, err)
	}
	return nil
}

// Bool reads a boolean flag, false when unset.
func (s *Session) Bool(ctx context.Context, name string) (bool, error) {
	var v bool
	if _, err := s.Load(ctx, name, &v); err != nil {
		return false, err
	}
	return v, nil
}

// String reads a string value, empty when unset.
func (s *Session) String(ctx context.Context, name string) (string, error) {
	var v string
	if _, err := s.Load(ctx, name, &v); err != nil {
		return "", err
	}
	return v, nil
}

// CorruptError is returned when stored bytes no longer decode.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt session value %s: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// DefaultLockStripes is used when NewLocker is given no stripe count.
const DefaultLockStripes = 1024

// Locker serializes read-modify-write cycles per session id. Ids share a
// stripe by hash, so waits are bounded by the caller's context.
type Locker struct {
	stripes []chan struct{}
}

func NewLocker(stripes int) *Locker {
	if stripes <= 0 {
		stripes = DefaultLockStripes
	}
	l := &Locker{stripes: make([]chan struct{}, stripes)}
	for i := range l.stripes {
		l.stripes[i] = make(chan struct{}, 1)
	}
	return l
}

// Lock acquires the stripe for id and returns its unlock func. It gives up
// with ctx's error when ctx ends first.
func (l *Locker) Lock(ctx context.Context, id string) (func(), error) {
	h := fnv.New32a()
	h.Write([]byte(id))
	stripe := l.stripes[h.Sum32()%uint32(len(l.stripes))]

	select {
	case stripe <- struct{}{}:
		return func() { <-stripe }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by the session middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
