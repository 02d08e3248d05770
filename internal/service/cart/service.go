package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/model"
	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/messaging"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
)

// EventPublisher announces cart changes to other listeners of the session.
type EventPublisher interface {
	PublishFor(ctx context.Context, sessionID, eventType string, payload interface{}) error
}

// ChangedEvent is published on every persisted cart change.
type ChangedEvent struct {
	Operation  string  `json:"operation"`
	TotalItems int     `json:"total_items"`
	TotalPrice float64 `json:"total_price"`
}

type CartServicer interface {
	Load(ctx context.Context, sess *session.Session) (*Cart, error)
	Summary(ctx context.Context, sess *session.Session) (model.CartSummary, error)
	AddItem(ctx context.Context, sess *session.Session, svc model.BookingService) (model.CartSummary, error)
	RemoveItem(ctx context.Context, sess *session.Session, id model.ID) (model.CartSummary, error)
	Clear(ctx context.Context, sess *session.Session) error
	Sync(ctx context.Context, sess *session.Session, selection []model.BookingService) (model.CartSummary, error)
}

type Service struct {
	events  EventPublisher
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewService creates the cart service. events may be nil.
func NewService(events EventPublisher, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{events: events, log: log, metrics: m}
}

// Load hydrates the session's cart. A stored value that no longer decodes is
// discarded and its key removed.
func (s *Service) Load(ctx context.Context, sess *session.Session) (*Cart, error) {
	var items []model.CartItem
	_, err := sess.Load(ctx, session.KeyCartItems, &items)
	if err != nil {
		var corrupt *session.CorruptError
		if !errors.As(err, &corrupt) {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
		s.log.WithContext(ctx).Warn("discarding corrupt cart", "session_id", sess.ID(), "error", err.Error())
		if err := sess.Remove(ctx, session.KeyCartItems); err != nil {
			return nil, fmt.Errorf("failed to remove corrupt cart: %w", err)
		}
		items = nil
	}
	return New(items...), nil
}

func (s *Service) save(ctx context.Context, sess *session.Session, c *Cart, operation string) error {
	if err := sess.Save(ctx, session.KeyCartItems, c.Items()); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	s.metrics.CartOperations.WithLabelValues(operation).Inc()

	if s.events != nil {
		event := ChangedEvent{Operation: operation, TotalItems: c.TotalItems(), TotalPrice: c.TotalPrice()}
		if err := s.events.PublishFor(ctx, sess.ID(), messaging.ChannelCartChanged, event); err != nil {
			s.log.WithContext(ctx).Error(err, "failed to publish cart change", "session_id", sess.ID())
		}
	}
	return nil
}

func (s *Service) Summary(ctx context.Context, sess *session.Session) (model.CartSummary, error) {
	c, err := s.Load(ctx, sess)
	if err != nil {
		return model.CartSummary{}, err
	}
	return c.Summary(), nil
}

func (s *Service) AddItem(ctx context.Context, sess *session.Session, svc model.BookingService) (model.CartSummary, error) {
	c, err := s.Load(ctx, sess)
	if err != nil {
		return model.CartSummary{}, err
	}
	if c.Add(svc) {
		if err := s.save(ctx, sess, c, "add"); err != nil {
			return model.CartSummary{}, err
		}
	}
	return c.Summary(), nil
}

func (s *Service) RemoveItem(ctx context.Context, sess *session.Session, id model.ID) (model.CartSummary, error) {
	c, err := s.Load(ctx, sess)
	if err != nil {
		return model.CartSummary{}, err
	}
	if c.Remove(id) {
		if err := s.save(ctx, sess, c, "remove"); err != nil {
			return model.CartSummary{}, err
		}
	}
	return c.Summary(), nil
}

func (s *Service) Clear(ctx context.Context, sess *session.Session) error {
	c, err := s.Load(ctx, sess)
	if err != nil {
		return err
	}
	if !c.Clear() {
		return nil
	}
	return s.save(ctx, sess, c, "clear")
}

// Sync replaces the cart contents with selection using set difference.
func (s *Service) Sync(ctx context.Context, sess *session.Session, selection []model.BookingService) (model.CartSummary, error) {
	c, err := s.Load(ctx, sess)
	if err != nil {
		return model.CartSummary{}, err
	}
	added, removed := c.SyncTo(selection)
	if len(added) > 0 || len(removed) > 0 {
		if err := s.save(ctx, sess, c, "sync"); err != nil {
			return model.CartSummary{}, err
		}
	}
	return c.Summary(), nil
}
