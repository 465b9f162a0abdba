// Package cleanup provides the background cache sweeper.
package cleanup

import (
	"context"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
)

// Worker handles background cache cleanup operations
type Worker struct {
	cache  interfaces.ExpiringCache
	config *Config
	logger *logging.ChanneledLogger
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(cache interfaces.ExpiringCache, config *Config, logger *logging.ChanneledLogger) *Worker {
	if config == nil {
		config = NewConfig()
	}
	return &Worker{cache: cache, config: config, logger: logger}
}

// Start runs until ctx is cancelled, sweeping on every interval tick.
func (w *Worker) Start(ctx context.Context) {
	if w.config.CleanupInterval <= 0 {
		w.logger.Cache().Info("Cache cleanup worker disabled")
		return
	}
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.Cache().Info("Cache cleanup worker started", "interval", w.config.CleanupInterval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Cache().Info("Cache cleanup worker stopping")
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single sweep and returns the number of purged entries.
func (w *Worker) RunOnce() int {
	start := time.Now()
	log := w.logger.WithOperation(logging.ChannelCache, "purge_expired")
	purged := w.cache.PurgeExpired()
	if purged > 0 {
		log.Info("Cache cleanup finished", "purged", purged, "duration", time.Since(start))
	} else {
		log.Debug("Cache cleanup found no expired entries", "duration", time.Since(start))
	}
	return purged
}
