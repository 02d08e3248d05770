package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/messaging"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
)

// EventHandler processes one received event.
type EventHandler func(ctx context.Context, channel string, msg messaging.Message) error

type EventListenerConfig struct {
	Channels      []string
	RetryAttempts int
	RetryDelay    time.Duration
}

// EventListener consumes domain events from the broker. A subscription that
// closes underneath it (a dropped Redis connection) is re-established.
type EventListener struct {
	broker  messaging.Broker
	handler EventHandler
	config  EventListenerConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewEventListener(
	broker messaging.Broker,
	handler EventHandler,
	config EventListenerConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *EventListener {
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 5
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	return &EventListener{
		broker:  broker,
		handler: handler,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

// Start listens on every configured channel until ctx is cancelled.
func (l *EventListener) Start(ctx context.Context) {
	l.logger.Info("Starting event listener", "channels", l.config.Channels)

	var wg sync.WaitGroup
	for _, channel := range l.config.Channels {
		wg.Add(1)
		go func(channel string) {
			defer wg.Done()
			l.listen(ctx, channel)
		}(channel)
	}
	wg.Wait()

	l.logger.Info("Shutting down event listener")
}

func (l *EventListener) listen(ctx context.Context, channel string) {
	for ctx.Err() == nil {
		messages, err := l.subscribe(ctx, channel)
		if err != nil {
			if ctx.Err() == nil {
				l.logger.Error(err, "Failed to subscribe", "channel", channel)
			}
			return
		}

		for raw := range messages {
			l.process(ctx, channel, raw)
		}
	}
}

func (l *EventListener) subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(l.config.RetryDelay), uint64(l.config.RetryAttempts)),
		ctx,
	)

	var messages <-chan []byte
	err := backoff.Retry(func() error {
		var err error
		messages, err = l.broker.Subscribe(ctx, channel)
		return err
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}
	return messages, nil
}

func (l *EventListener) process(ctx context.Context, channel string, raw []byte) {
	var msg messaging.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		l.metrics.EventsConsumed.WithLabelValues(channel, "malformed").Inc()
		l.logger.Warn("Dropping malformed event", "channel", channel, "error", err.Error())
		return
	}

	if err := l.handler(ctx, channel, msg); err != nil {
		l.metrics.EventsConsumed.WithLabelValues(channel, "failed").Inc()
		l.logger.Error(err, "Failed to handle event", "channel", channel, "session_id", msg.SessionID)
		return
	}
	l.metrics.EventsConsumed.WithLabelValues(channel, "processed").Inc()
}

// LogEvents is the default handler: it records each event in the service log.
func LogEvents(log *logger.Logger) EventHandler {
	return func(ctx context.Context, channel string, msg messaging.Message) error {
		log.Info("Domain event",
			"channel", channel,
			"type", msg.Type,
			"session_id", msg.SessionID,
			"occurred_at", msg.OccurredAt.Format(time.RFC3339),
		)
		return nil
	}
}
