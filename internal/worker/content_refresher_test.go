package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
)

type fakeContent struct {
	settings, cities int
	failSettings     bool
}

func (f *fakeContent) RefreshSettings(ctx context.Context) error {
	f.settings++
	if f.failSettings {
		return errors.New("backend down")
	}
	return nil
}

func (f *fakeContent) RefreshCities(ctx context.Context) error {
	f.cities++
	return nil
}

type fakeTeam struct{ invalidated int }

func (f *fakeTeam) Invalidate() { f.invalidated++ }

type fakeSweeper struct{ swept int }

func (f *fakeSweeper) Sweep() int {
	f.swept++
	return 0
}

func TestRunOnceRefreshesEverything(t *testing.T) {
	content := &fakeContent{failSettings: true}
	team := &fakeTeam{}
	seq := &fakeSweeper{}
	w := NewContentRefresher(content, team, seq, ContentRefresherConfig{Schedule: "@every 1m"}, logger.Nop())

	w.RunOnce(context.Background())

	assert.Equal(t, 1, content.settings)
	assert.Equal(t, 1, content.cities, "a settings failure must not skip cities")
	assert.Equal(t, 1, team.invalidated)
	assert.Equal(t, 1, seq.swept)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	w := NewContentRefresher(&fakeContent{}, nil, nil, ContentRefresherConfig{Schedule: "whenever"}, logger.Nop())
	assert.Error(t, w.Start(context.Background()))
}

func TestStartStopsWithContext(t *testing.T) {
	w := NewContentRefresher(&fakeContent{}, nil, nil, ContentRefresherConfig{Schedule: "@every 1h"}, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
}
