package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/cart"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/service/city"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/messaging"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
	validation "github.com/korattejas/beautyden-nextjs-sub001/pkg/validator"
)

// BookingAPI is the slice of the backend the wizard submits to.
type BookingAPI interface {
	CreateBooking(ctx context.Context, req model.BookingRequest) (*model.BookingConfirmation, error)
}

// EventPublisher publishes session-scoped events.
type EventPublisher interface {
	PublishFor(ctx context.Context, sessionID, eventType string, payload interface{}) error
}

type BookingServicer interface {
	State(ctx context.Context, sess *session.Session) (*View, error)
	Next(ctx context.Context, sess *session.Session) (*View, error)
	Prev(ctx context.Context, sess *session.Session) (*View, error)
	Update(ctx context.Context, sess *session.Session, patch model.BookingFormPatch) (*View, error)
	SelectServices(ctx context.Context, sess *session.Session, services []model.BookingService) (*View, error)
	AdvanceFromCart(ctx context.Context, sess *session.Session) (*View, error)
	Reset(ctx context.Context, sess *session.Session) (*View, error)
	Confirm(ctx context.Context, sess *session.Session) (*model.BookingConfirmation, error)
}

// View is the wizard plus the cart it drives.
type View struct {
	model.WizardState
	StepName string            `json:"step_name"`
	Cart     model.CartSummary `json:"cart"`
}

// ConfirmedEvent is published after the backend accepts a booking.
type ConfirmedEvent struct {
	OrderNumber string   `json:"order_number"`
	ServiceIDs  []string `json:"service_ids"`
	CityID      string   `json:"city_id"`
	Total       float64  `json:"total"`
}

type Service struct {
	api      BookingAPI
	carts    cart.CartServicer
	cities   city.CityServicer
	events   EventPublisher
	validate *validator.Validate
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(api BookingAPI, carts cart.CartServicer, cities city.CityServicer, events EventPublisher, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		api:      api,
		carts:    carts,
		cities:   cities,
		events:   events,
		validate: validation.New(),
		log:      log,
		metrics:  m,
	}
}

// load returns the session's wizard. A visitor without a stored wizard starts at
// step one with the cart contents preselected.
func (s *Service) load(ctx context.Context, sess *session.Session) (*Wizard, *model.City, error) {
	c, err := s.cities.Require(ctx, sess)
	if err != nil {
		return nil, nil, err
	}

	var state model.WizardState
	ok, err := sess.Load(ctx, session.KeyBookingWizard, &state)
	if err != nil {
		var corrupt *session.CorruptError
		if !errors.As(err, &corrupt) {
			return nil, nil, fmt.Errorf("failed to load booking wizard: %w", err)
		}
		s.log.WithContext(ctx).Warn("discarding corrupt booking wizard", "session_id", sess.ID())
		ok = false
	}

	w := NewWizard(state)
	if !ok {
		crt, err := s.carts.Load(ctx, sess)
		if err != nil {
			return nil, nil, err
		}
		w.SetServices(crt.Services())
	}
	w.SetCity(c.ID)
	return w, c, nil
}

func (s *Service) save(ctx context.Context, sess *session.Session, w *Wizard) error {
	if err := sess.Save(ctx, session.KeyBookingWizard, w.State()); err != nil {
		return fmt.Errorf("failed to save booking wizard: %w", err)
	}
	return nil
}

func (s *Service) view(ctx context.Context, sess *session.Session, w *Wizard) (*View, error) {
	summary, err := s.carts.Summary(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &View{WizardState: w.State(), StepName: StepName(w.CurrentStep()), Cart: summary}, nil
}

// mutate loads the wizard, applies fn and persists the result when fn reports a change.
func (s *Service) mutate(ctx context.Context, sess *session.Session, direction string, fn func(w *Wizard) (bool, error)) (*View, error) {
	w, _, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	changed, err := fn(w)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.save(ctx, sess, w); err != nil {
			return nil, err
		}
		if direction != "" {
			s.metrics.WizardTransitions.WithLabelValues(direction).Inc()
		}
	}
	return s.view(ctx, sess, w)
}

func (s *Service) State(ctx context.Context, sess *session.Session) (*View, error) {
	w, _, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sess, w)
}

func (s *Service) Next(ctx context.Context, sess *session.Session) (*View, error) {
	return s.mutate(ctx, sess, "next", func(w *Wizard) (bool, error) {
		return w.Next(), nil
	})
}

func (s *Service) Prev(ctx context.Context, sess *session.Session) (*View, error) {
	return s.mutate(ctx, sess, "prev", func(w *Wizard) (bool, error) {
		return w.Prev(), nil
	})
}

func (s *Service) Update(ctx context.Context, sess *session.Session, patch model.BookingFormPatch) (*View, error) {
	return s.mutate(ctx, sess, "", func(w *Wizard) (bool, error) {
		w.Update(patch)
		return true, nil
	})
}

// SelectServices sets the wizard selection and makes the cart match it.
func (s *Service) SelectServices(ctx context.Context, sess *session.Session, services []model.BookingService) (*View, error) {
	return s.mutate(ctx, sess, "", func(w *Wizard) (bool, error) {
		w.SetServices(services)
		if _, err := s.carts.Sync(ctx, sess, services); err != nil {
			return false, fmt.Errorf("failed to sync cart: %w", err)
		}
		return true, nil
	})
}

// AdvanceFromCart moves to date and time selection when the cart is non-empty
// and tells other listeners about it.
func (s *Service) AdvanceFromCart(ctx context.Context, sess *session.Session) (*View, error) {
	crt, err := s.carts.Load(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sess, "advance", func(w *Wizard) (bool, error) {
		w.SetServices(crt.Services())
		if !w.AdvanceFromCart(crt.TotalItems()) {
			return false, nil
		}
		s.publish(ctx, sess, messaging.ChannelNavigateNext, map[string]interface{}{
			"step": w.CurrentStep(),
		})
		return true, nil
	})
}

func (s *Service) Reset(ctx context.Context, sess *session.Session) (*View, error) {
	if _, err := s.cities.Require(ctx, sess); err != nil {
		return nil, err
	}
	if err := sess.Remove(ctx, session.KeyBookingWizard); err != nil {
		return nil, fmt.Errorf("failed to reset booking wizard: %w", err)
	}
	s.metrics.WizardTransitions.WithLabelValues("reset").Inc()
	return s.State(ctx, sess)
}

// Confirm submits the assembled booking. It is only allowed from the review
// step. On success the cart is cleared and the wizard starts over.
func (s *Service) Confirm(ctx context.Context, sess *session.Session) (*model.BookingConfirmation, error) {
	w, c, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	if w.CurrentStep() != StepReviewConfirm {
		return nil, apperrors.NewBadRequest("booking can only be confirmed from the review step", nil)
	}

	form := w.State().FormData
	if err := s.validate.Struct(form); err != nil {
		return nil, apperrors.NewBadRequest("invalid booking details", err)
	}

	req := w.Request()
	confirmation, err := s.api.CreateBooking(ctx, req)
	if err != nil {
		s.metrics.BookingsSubmitted.WithLabelValues("failed").Inc()
		s.log.WithContext(ctx).Error(err, "booking submission failed", "session_id", sess.ID(), "city_id", c.ID.String())
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	s.metrics.BookingsSubmitted.WithLabelValues("success").Inc()

	if err := s.carts.Clear(ctx, sess); err != nil {
		s.log.WithContext(ctx).Error(err, "failed to clear cart after booking", "session_id", sess.ID())
	}
	if err := sess.Remove(ctx, session.KeyBookingWizard); err != nil {
		s.log.WithContext(ctx).Error(err, "failed to reset wizard after booking", "session_id", sess.ID())
	}

	s.publish(ctx, sess, messaging.ChannelBookingConfirmed, ConfirmedEvent{
		OrderNumber: confirmation.OrderNumber,
		ServiceIDs:  req.ServiceIDs,
		CityID:      req.CityID,
		Total:       req.ServiceTotal,
	})

	s.log.WithContext(ctx).Info("booking confirmed", "order_number", confirmation.OrderNumber, "services", len(req.ServiceIDs))
	return confirmation, nil
}

// publish never fails the caller; a lost event is only logged.
func (s *Service) publish(ctx context.Context, sess *session.Session, channel string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishFor(ctx, sess.ID(), channel, payload); err != nil {
		s.log.WithContext(ctx).Error(err, "failed to publish event", "channel", channel)
	}
}
