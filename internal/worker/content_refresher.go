package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
)

// ContentSource is the cached content the refresher keeps warm.
type ContentSource interface {
	RefreshSettings(ctx context.Context) error
	RefreshCities(ctx context.Context) error
}

// TeamCache is the beautician list cache.
type TeamCache interface {
	Invalidate()
}

// Sweeper forgets idle request sequence keys.
type Sweeper interface {
	Sweep() int
}

type ContentRefresherConfig struct {
	// Schedule is a cron expression such as "@every 10m" or "0 */2 * * *".
	Schedule string
	Timeout  time.Duration
}

// ContentRefresher periodically reloads settings and cities, drops the cached
// team list and sweeps the search sequence tracker.
type ContentRefresher struct {
	content ContentSource
	team    TeamCache
	seq     Sweeper
	config  ContentRefresherConfig
	logger  *logger.Logger
}

func NewContentRefresher(content ContentSource, team TeamCache, seq Sweeper, config ContentRefresherConfig, logger *logger.Logger) *ContentRefresher {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &ContentRefresher{
		content: content,
		team:    team,
		seq:     seq,
		config:  config,
		logger:  logger,
	}
}

// Start runs the schedule until ctx is cancelled.
func (w *ContentRefresher) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(w.config.Schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", w.config.Schedule, err)
	}

	c.Start()
	w.logger.Info("content refresher started", "schedule", w.config.Schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	w.logger.Info("content refresher stopped")
	return nil
}

// RunOnce performs one refresh. Failures are logged and leave the previous
// cached values in place.
func (w *ContentRefresher) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	if err := w.content.RefreshSettings(ctx); err != nil {
		w.logger.Error(err, "failed to refresh settings")
	}
	if err := w.content.RefreshCities(ctx); err != nil {
		w.logger.Error(err, "failed to refresh cities")
	}
	if w.team != nil {
		w.team.Invalidate()
	}
	if w.seq != nil {
		if n := w.seq.Sweep(); n > 0 {
			w.logger.Debug("swept idle search sequences", "count", n)
		}
	}
}
