package preference

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
)

func newSession() *session.Session {
	return session.New("visitor", session.NewMemoryStorage(time.Hour, time.Minute), time.Hour)
}

func TestCookieConsent(t *testing.T) {
	ctx := context.Background()
	s := NewService()
	sess := newSession()

	prefs, err := s.Get(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, prefs.CookieConsent)

	prefs, err = s.SetCookieConsent(ctx, sess, model.CookieConsentRejected)
	require.NoError(t, err)
	assert.Equal(t, model.CookieConsentRejected, prefs.CookieConsent)

	_, err = s.SetCookieConsent(ctx, sess, "maybe")
	assert.Error(t, err)
}

func TestSeasonalBannerShownOnce(t *testing.T) {
	ctx := context.Background()
	s := NewService()
	sess := newSession()

	before, err := s.MarkSeasonalBannerShown(ctx, sess)
	require.NoError(t, err)
	assert.False(t, before)

	before, err = s.MarkSeasonalBannerShown(ctx, sess)
	require.NoError(t, err)
	assert.True(t, before)
}
