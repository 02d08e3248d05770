package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSaveLoadRemove(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage(time.Hour, time.Hour)
	s := New("abc", store, time.Hour)

	var v []string
	ok, err := s.Load(ctx, KeyCartItems, &v)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, KeyCartItems, []string{"a", "b"}))
	ok, err = s.Load(ctx, KeyCartItems, &v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, v)

	require.NoError(t, s.Remove(ctx, KeyCartItems))
	ok, err = s.Load(ctx, KeyCartItems, &v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionsDoNotShareKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage(time.Hour, time.Hour)
	a := New("a", store, time.Hour)
	b := New("b", store, time.Hour)

	require.NoError(t, a.Save(ctx, KeyHasVisited, true))

	visited, err := b.Bool(ctx, KeyHasVisited)
	require.NoError(t, err)
	assert.False(t, visited)
}

func TestLoadReportsCorruptValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage(time.Hour, time.Hour)
	s := New("abc", store, time.Hour)
	require.NoError(t, store.Set(ctx, s.key(KeyCartItems), []byte("{not json"), 0))

	var v []string
	_, err := s.Load(ctx, KeyCartItems, &v)
	var corrupt *CorruptError
	assert.ErrorAs(t, err, &corrupt)
	assert.Equal(t, KeyCartItems, corrupt.Key)
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", "beautyden", time.Hour)

	id, token, err := m.Issue()
	require.NoError(t, err)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenRejectsTamperingAndExpiry(t *testing.T) {
	m := NewTokenManager("test-secret", "beautyden", time.Hour)
	_, token, err := m.Issue()
	require.NoError(t, err)

	other := NewTokenManager("other-secret", "beautyden", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLockerSerializesSameID(t *testing.T) {
	l := NewLocker(8)
	unlock, err := l.Lock(context.Background(), "s1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		unlockSecond, err := l.Lock(context.Background(), "s1")
		if err == nil {
			defer unlockSecond()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-acquired
}

func TestLockerWaitRespectsContext(t *testing.T) {
	l := NewLocker(1)
	unlock, err := l.Lock(context.Background(), "s1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = l.Lock(ctx, "other-session")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
