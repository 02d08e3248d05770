package preference

import (
	"context"
	"fmt"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
)

type PreferenceServicer interface {
	Get(ctx context.Context, sess *session.Session) (model.Preferences, error)
	SetCookieConsent(ctx context.Context, sess *session.Session, choice model.CookieConsent) (model.Preferences, error)
	MarkSeasonalBannerShown(ctx context.Context, sess *session.Session) (bool, error)
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Get(ctx context.Context, sess *session.Session) (model.Preferences, error) {
	consent, err := sess.String(ctx, session.KeyCookieConsent)
	if err != nil {
		return model.Preferences{}, fmt.Errorf("failed to read cookie consent: %w", err)
	}
	shown, err := sess.Bool(ctx, session.KeySeasonalBannerShown)
	if err != nil {
		return model.Preferences{}, fmt.Errorf("failed to read banner flag: %w", err)
	}
	return model.Preferences{CookieConsent: model.CookieConsent(consent), SeasonalBannerShown: shown}, nil
}

func (s *Service) SetCookieConsent(ctx context.Context, sess *session.Session, choice model.CookieConsent) (model.Preferences, error) {
	switch choice {
	case model.CookieConsentAccepted, model.CookieConsentRejected:
	default:
		return model.Preferences{}, fmt.Errorf("invalid cookie consent %q", choice)
	}
	if err := sess.Save(ctx, session.KeyCookieConsent, string(choice)); err != nil {
		return model.Preferences{}, fmt.Errorf("failed to save cookie consent: %w", err)
	}
	return s.Get(ctx, sess)
}

// MarkSeasonalBannerShown sets the once-per-session banner flag and reports
// whether it was already set.
func (s *Service) MarkSeasonalBannerShown(ctx context.Context, sess *session.Session) (bool, error) {
	shown, err := sess.Bool(ctx, session.KeySeasonalBannerShown)
	if err != nil {
		return false, fmt.Errorf("failed to read banner flag: %w", err)
	}
	if shown {
		return true, nil
	}
	if err := sess.Save(ctx, session.KeySeasonalBannerShown, true); err != nil {
		return false, fmt.Errorf("failed to save banner flag: %w", err)
	}
	return false, nil
}
