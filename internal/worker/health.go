package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthProber is the single gateway call the watcher needs.
type HealthProber interface {
	Health(ctx context.Context) error
}

// HealthWatcher polls the backend liveness endpoint in the background so
// pages can render a connected/disconnected badge without probing inline.
// While the backend is down, probes back off exponentially instead of
// hammering it on the regular interval.
type HealthWatcher struct {
	prober   HealthProber
	interval time.Duration
	retry    RetryPolicy
	logger   *zerolog.Logger

	connected atomic.Bool
	checked   atomic.Bool
}

func NewHealthWatcher(prober HealthProber, interval time.Duration, retry RetryPolicy, logger *zerolog.Logger) *HealthWatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = interval
	}
	return &HealthWatcher{
		prober:   prober,
		interval: interval,
		retry:    retry,
		logger:   logger,
	}
}

// Start blocks until ctx is done, probing the backend. Run it on its own
// goroutine.
func (w *HealthWatcher) Start(ctx context.Context) {
	failures := 0

	for {
		w.probe(ctx, &failures)

		delay := w.interval
		if failures > 0 {
			delay = w.retry.NextDelay(failures)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (w *HealthWatcher) probe(ctx context.Context, failures *int) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := w.prober.Health(probeCtx)
	w.checked.Store(true)

	if err != nil {
		*failures++
		if w.connected.Swap(false) {
			w.logger.Warn().Err(err).Msg("backend went down")
		}
		return
	}

	*failures = 0
	if !w.connected.Swap(true) {
		w.logger.Info().Msg("backend reachable")
	}
}

// Connected reports the last probe outcome; false until the first probe
// completes.
func (w *HealthWatcher) Connected() bool {
	return w.connected.Load()
}

// Checked reports whether at least one probe has completed.
func (w *HealthWatcher) Checked() bool {
	return w.checked.Load()
}
