// Package retention provides background worker
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/logging"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/observability/performance"
	"github.com/syab726/project2-face-sub001/internal/infrastructure/tracking/store"
)

// Worker runs periodic retention sweeps over the tracking store
type Worker struct {
	store       *store.TrackingStore
	config      *Config
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewWorker creates a new retention worker with injected configuration
func NewWorker(trackingStore *store.TrackingStore, config *Config, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *Worker {
	return &Worker{
		store:       trackingStore,
		config:      config,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Start begins the sweep routine, using the configured interval. Blocks until
// the context is cancelled, so run it in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	if w.logger != nil {
		w.logger.Retention().Info("Retention worker started",
			"interval", w.config.SweepInterval.String(),
			"sessionTtl", w.config.SessionTTL.String(),
			"verbose", w.config.VerboseReporting)
	}

	for {
		select {
		case <-ctx.Done():
			if w.logger != nil {
				w.logger.Retention().Info("Retention worker stopping")
			}
			return
		case <-ticker.C:
			w.RunOnce(time.Now().UTC())
		}
	}
}

// RunOnce performs a single sweep. Exposed so callers can trigger a sweep
// outside the ticker cadence.
func (w *Worker) RunOnce(now time.Time) store.SweepResult {
	reporter := NewReporter()

	var marker *performance.Marker
	if w.perfTracker != nil {
		marker = w.perfTracker.StartOperation("retention:sweep")
	}

	result := w.store.Sweep(now, w.config.SessionTTL)

	if marker != nil {
		marker.AddMetadata("examined", result.Examined)
		marker.AddMetadata("removed", result.Removed)
		marker.AddMetadata("pinned", result.Pinned)
		w.perfTracker.CompleteOperation(marker)
	}

	if w.config.VerboseReporting {
		reporter.LogStage("PERIODIC RETENTION SWEEP")
		fmt.Print(reporter.GenerateSweepReport(result))
	}

	if result.Removed > 0 {
		reporter.LogSuccess("Retention sweep finished: %d of %d sessions removed in %v",
			result.Removed, result.Examined, result.Duration)
	} else if w.config.VerboseReporting {
		reporter.LogInfo("Retention sweep completed - no expired sessions found (%v)", result.Duration)
	}

	return result
}
