package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CacheWarmer refreshes the tournament cache on a schedule so readers
// rarely wait on the provider
type CacheWarmer struct {
	cache     *TournamentCache
	schedule  string
	timeout   time.Duration
	logger    *logrus.Logger
	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewCacheWarmer creates a warmer for cache running on the cron schedule
func NewCacheWarmer(cache *TournamentCache, schedule string, timeout time.Duration, logger *logrus.Logger) *CacheWarmer {
	return &CacheWarmer{
		cache:    cache,
		schedule: schedule,
		timeout:  timeout,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start registers the warm job and starts the scheduler
func (w *CacheWarmer) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("cache warmer is already running")
	}

	if _, err := w.cron.AddFunc(w.schedule, w.Warm); err != nil {
		return fmt.Errorf("failed to schedule cache warmer: %w", err)
	}

	w.cron.Start()
	w.isRunning = true
	w.logger.WithField("schedule", w.schedule).Info("Cache warmer started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (w *CacheWarmer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return
	}

	ctx := w.cron.Stop()
	<-ctx.Done()
	w.isRunning = false
	w.logger.Info("Cache warmer stopped")
}

// Warm reads through the cache once, which refreshes an expired snapshot
func (w *CacheWarmer) Warm() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	snapshot, err := w.cache.Get(ctx)
	if err != nil {
		w.logger.WithError(err).Warn("Cache warm failed")
		return
	}

	w.logger.WithFields(logrus.Fields{
		"round":    snapshot.Tournament.Round,
		"players":  len(snapshot.Leaderboard),
		"duration": time.Since(start),
	}).Debug("Cache warmed")
}
