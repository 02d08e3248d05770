package city

import (
	"context"
	"errors"
	"fmt"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
)

type CityServicer interface {
	Load(ctx context.Context, sess *session.Session) (model.CityState, error)
	Selected(ctx context.Context, sess *session.Session) (*model.City, error)
	Require(ctx context.Context, sess *session.Session) (*model.City, error)
	SetSelectedCity(ctx context.Context, sess *session.Session, city *model.City) (model.CityState, error)
	SetPopup(ctx context.Context, sess *session.Session, visible bool) (model.CityState, error)
}

type Service struct {
	log *logger.Logger
}

func NewService(log *logger.Logger) *Service {
	return &Service{log: log}
}

// Load returns the city state a client sees on first render. A visitor with
// neither a stored city nor the visited flag gets the picker opened unless it
// was explicitly closed.
func (s *Service) Load(ctx context.Context, sess *session.Session) (model.CityState, error) {
	city, err := s.Selected(ctx, sess)
	if err != nil {
		return model.CityState{}, err
	}

	var popup bool
	popupStored, err := sess.Load(ctx, session.KeyShowCityPopup, &popup)
	if err != nil {
		return model.CityState{}, fmt.Errorf("failed to load city popup: %w", err)
	}

	if city != nil {
		return model.CityState{SelectedCity: city, ShowCityPopup: popup}, nil
	}

	visited, err := sess.Bool(ctx, session.KeyHasVisited)
	if err != nil {
		return model.CityState{}, fmt.Errorf("failed to load visit flag: %w", err)
	}
	if !visited {
		return model.CityState{IsFirstVisit: true, ShowCityPopup: popup || !popupStored}, nil
	}
	return model.CityState{ShowCityPopup: popup}, nil
}

// Selected returns the stored city or nil. A corrupt value is dropped.
func (s *Service) Selected(ctx context.Context, sess *session.Session) (*model.City, error) {
	var city model.City
	ok, err := sess.Load(ctx, session.KeySelectedCity, &city)
	if err != nil {
		var corrupt *session.CorruptError
		if !errors.As(err, &corrupt) {
			return nil, fmt.Errorf("failed to load city: %w", err)
		}
		s.log.WithContext(ctx).Warn("discarding corrupt city", "session_id", sess.ID())
		if err := sess.Remove(ctx, session.KeySelectedCity); err != nil {
			return nil, fmt.Errorf("failed to remove corrupt city: %w", err)
		}
		return nil, nil
	}
	if !ok || city.ID == "" {
		return nil, nil
	}
	return &city, nil
}

// Require is Selected for flows gated on a city.
func (s *Service) Require(ctx context.Context, sess *session.Session) (*model.City, error) {
	city, err := s.Selected(ctx, sess)
	if err != nil {
		return nil, err
	}
	if city == nil {
		return nil, apperrors.ErrNoCity
	}
	return city, nil
}

// SetSelectedCity stores or clears the city. Either way the visitor counts as visited.
func (s *Service) SetSelectedCity(ctx context.Context, sess *session.Session, city *model.City) (model.CityState, error) {
	if city != nil {
		if err := sess.Save(ctx, session.KeySelectedCity, city); err != nil {
			return model.CityState{}, fmt.Errorf("failed to save city: %w", err)
		}
		if err := sess.Save(ctx, session.KeyShowCityPopup, false); err != nil {
			return model.CityState{}, fmt.Errorf("failed to save city popup: %w", err)
		}
	} else if err := sess.Remove(ctx, session.KeySelectedCity); err != nil {
		return model.CityState{}, fmt.Errorf("failed to clear city: %w", err)
	}

	if err := sess.Save(ctx, session.KeyHasVisited, true); err != nil {
		return model.CityState{}, fmt.Errorf("failed to save visit flag: %w", err)
	}

	s.log.WithContext(ctx).Debug("city selection changed", "session_id", sess.ID(), "cleared", city == nil)
	return s.Load(ctx, sess)
}

func (s *Service) SetPopup(ctx context.Context, sess *session.Session, visible bool) (model.CityState, error) {
	if err := sess.Save(ctx, session.KeyShowCityPopup, visible); err != nil {
		return model.CityState{}, fmt.Errorf("failed to save city popup: %w", err)
	}
	return s.Load(ctx, sess)
}
