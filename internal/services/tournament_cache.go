package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stigscousin/millerlite-leaderboard/internal/metrics"
	"github.com/stigscousin/millerlite-leaderboard/internal/models"
)

// ErrDataUnavailable is returned when no snapshot could be produced and none
// was cached before
var ErrDataUnavailable = errors.New("tournament data unavailable")

// SnapshotSource produces fresh tournament snapshots
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) (*models.TournamentSnapshot, error)
	TournamentID() string
}

// TournamentCacheConfig holds cache behaviour settings
type TournamentCacheConfig struct {
	TTL           time.Duration
	RefreshWindow RefreshWindow
}

// TournamentCacheOption customizes a TournamentCache
type TournamentCacheOption func(*TournamentCache)

// WithCacheClock replaces the wall clock
func WithCacheClock(now func() time.Time) TournamentCacheOption {
	return func(c *TournamentCache) {
		c.now = now
	}
}

// WithSnapshotStore mirrors every refreshed snapshot to store and restores
// from it when the process has nothing cached
func WithSnapshotStore(store SnapshotStore) TournamentCacheOption {
	return func(c *TournamentCache) {
		c.store = store
	}
}

// TournamentCache holds the most recent snapshot of the followed tournament.
// Readers get the cached snapshot while it is younger than the TTL; older
// snapshots trigger a refresh and are served stale if the refresh fails.
type TournamentCache struct {
	source SnapshotSource
	store  SnapshotStore
	ttl    time.Duration
	window RefreshWindow
	now    func() time.Time
	logger *logrus.Logger

	mu        sync.Mutex
	snapshot  *models.TournamentSnapshot
	fetchedAt time.Time
}

// NewTournamentCache creates an empty cache
func NewTournamentCache(source SnapshotSource, cfg TournamentCacheConfig, logger *logrus.Logger, opts ...TournamentCacheOption) *TournamentCache {
	window := cfg.RefreshWindow
	if window == nil {
		window = AlwaysOpen
	}

	c := &TournamentCache{
		source: source,
		ttl:    cfg.TTL,
		window: window,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current snapshot, refreshing it first when it is missing
// or older than the TTL. Concurrent callers share one refresh.
//
// A refresh is not cancelled when ctx is. It runs until the provider answers
// or the fetcher gives up, so a reader that disconnects mid-refresh does not
// fail it for the readers queued behind.
func (c *TournamentCache) Get(ctx context.Context) (*models.TournamentSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	now := c.now()
	if c.snapshot != nil {
		age := now.Sub(c.fetchedAt)
		if age <= c.ttl {
			metrics.CacheReads.WithLabelValues("fresh").Inc()
			return c.snapshot, nil
		}
		if !c.window(now) {
			metrics.CacheReads.WithLabelValues("stale").Inc()
			return c.snapshot, nil
		}
	}

	snapshot, err := c.source.FetchSnapshot(ctx)
	if err == nil {
		c.replace(ctx, snapshot, c.now())
		metrics.CacheReads.WithLabelValues("refreshed").Inc()
		return snapshot, nil
	}

	c.logger.WithFields(logrus.Fields{
		"tournament_id": c.source.TournamentID(),
		"has_snapshot":  c.snapshot != nil,
		"error":         err.Error(),
	}).Warn("Tournament refresh failed")

	if c.snapshot != nil {
		metrics.CacheReads.WithLabelValues("stale").Inc()
		return c.snapshot, nil
	}

	if c.restore(ctx) {
		metrics.CacheReads.WithLabelValues("stale").Inc()
		return c.snapshot, nil
	}

	metrics.CacheReads.WithLabelValues("unavailable").Inc()
	return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
}

// Peek returns the cached snapshot without refreshing
func (c *TournamentCache) Peek() (*models.TournamentSnapshot, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot, c.fetchedAt, c.snapshot != nil
}

// TTL returns the configured freshness lifetime
func (c *TournamentCache) TTL() time.Duration {
	return c.ttl
}

func (c *TournamentCache) replace(ctx context.Context, snapshot *models.TournamentSnapshot, fetchedAt time.Time) {
	c.snapshot = snapshot
	c.fetchedAt = fetchedAt
	metrics.SnapshotFetchedAt.Set(float64(fetchedAt.Unix()))

	if c.store == nil {
		return
	}
	stored := models.StoredSnapshot{Snapshot: snapshot, FetchedAt: fetchedAt}
	if err := c.store.Save(ctx, c.source.TournamentID(), stored); err != nil {
		c.logger.WithError(err).Warn("Failed to persist tournament snapshot")
	}
}

// restore loads the last persisted snapshot. The restored snapshot keeps its
// original fetch time, so the next read attempts a refresh again.
func (c *TournamentCache) restore(ctx context.Context) bool {
	if c.store == nil {
		return false
	}

	stored, err := c.store.Load(ctx, c.source.TournamentID())
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			c.logger.WithError(err).Warn("Failed to load persisted tournament snapshot")
		}
		return false
	}
	if stored.Snapshot == nil || stored.Snapshot.Tournament.ID != c.source.TournamentID() {
		return false
	}

	c.snapshot = stored.Snapshot
	c.fetchedAt = stored.FetchedAt
	metrics.SnapshotFetchedAt.Set(float64(stored.FetchedAt.Unix()))

	c.logger.WithFields(logrus.Fields{
		"tournament_id": c.source.TournamentID(),
		"fetched_at":    stored.FetchedAt,
	}).Info("Restored persisted tournament snapshot")
	return true
}
