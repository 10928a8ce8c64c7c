package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stigscousin/millerlite-leaderboard/internal/providers"
	"github.com/stigscousin/millerlite-leaderboard/internal/services"
	"github.com/stigscousin/millerlite-leaderboard/pkg/config"
	"github.com/stigscousin/millerlite-leaderboard/pkg/database"
)

// snapshotRetention bounds how long a mirrored snapshot outlives the process
const snapshotRetention = 14 * 24 * time.Hour

// NewFetcher builds the rate-limited provider fetcher from config
func NewFetcher(cfg *config.Config, logger *logrus.Logger) *providers.RateLimitedFetcher {
	return providers.NewRateLimitedFetcher(providers.FetcherConfig{
		BaseURL:     cfg.SportradarBaseURL,
		APIKey:      cfg.SportradarAPIKey,
		Timeout:     cfg.ExternalAPITimeout,
		MinInterval: cfg.RateLimitMinInterval,
		MaxRetries:  cfg.RateLimitMaxRetries,
		BackoffUnit: cfg.RateLimitBackoffUnit,
		MaxBackoff:  cfg.RateLimitMaxBackoff,
	}, logger)
}

// NewGolfClient builds the Sportradar client from config
func NewGolfClient(cfg *config.Config, logger *logrus.Logger) *providers.SportradarGolfClient {
	return providers.NewSportradarGolfClient(NewFetcher(cfg, logger), logger)
}

// NewNormalizer builds the normalizer for the pool's payout table
func NewNormalizer(cfg *config.Config, pool *config.Pool) (*services.LeaderboardNormalizer, error) {
	policy, err := services.ParseRoundPolicy(cfg.RoundPolicy)
	if err != nil {
		return nil, err
	}
	return services.NewLeaderboardNormalizer(services.PayoutTable(pool.Payouts), policy), nil
}

// NewSnapshotSource wires the provider, normalizer and circuit breaker for
// the pool's tournament
func NewSnapshotSource(cfg *config.Config, pool *config.Pool, provider services.LeaderboardProvider, logger *logrus.Logger) (*services.LeaderboardSnapshotSource, error) {
	normalizer, err := NewNormalizer(cfg, pool)
	if err != nil {
		return nil, err
	}

	breaker := services.NewCircuitBreakerService("sportradar", cfg.CircuitBreakerThreshold, cfg.CircuitBreakerTimeout, logger)

	return services.NewLeaderboardSnapshotSource(provider, normalizer, breaker, TournamentDefinition(pool), logger), nil
}

// TournamentDefinition converts the pool's tournament block
func TournamentDefinition(pool *config.Pool) services.TournamentDefinition {
	return services.TournamentDefinition{
		ID:        pool.Tournament.ID,
		Name:      pool.Tournament.Name,
		Year:      pool.Tournament.Year,
		StartDate: pool.Tournament.StartDate,
		EndDate:   pool.Tournament.EndDate,
		VenueName: pool.Tournament.Venue,
	}
}

// NewTournamentCache builds the cache over source, mirroring to store when
// store is non-nil
func NewTournamentCache(cfg *config.Config, source services.SnapshotSource, store services.SnapshotStore, logger *logrus.Logger) (*services.TournamentCache, error) {
	window, err := services.ParseRefreshWindow(cfg.RefreshWindow)
	if err != nil {
		return nil, err
	}

	var opts []services.TournamentCacheOption
	if store != nil {
		opts = append(opts, services.WithSnapshotStore(store))
	}

	return services.NewTournamentCache(source, services.TournamentCacheConfig{
		TTL:           cfg.CacheTTL,
		RefreshWindow: window,
	}, logger, opts...), nil
}

// OpenSnapshotStore connects the configured snapshot store. The returned
// close function is never nil.
func OpenSnapshotStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (services.SnapshotStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SnapshotStore {
	case "", config.SnapshotStoreNone:
		return nil, noop, nil

	case config.SnapshotStoreRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opt)
		cache := services.NewCacheService(client)
		if err := cache.Ping(ctx); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("Mirroring tournament snapshots to Redis")
		return services.NewRedisSnapshotStore(cache, snapshotRetention), client.Close, nil

	case config.SnapshotStorePostgres, config.SnapshotStoreSQLite:
		db, err := database.NewConnection(cfg.SnapshotStore, cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			return nil, noop, err
		}
		store := services.NewGormSnapshotStore(db.DB)
		if err := store.Migrate(); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("failed to migrate snapshot table: %w", err)
		}
		logger.WithField("driver", cfg.SnapshotStore).Info("Mirroring tournament snapshots to database")
		return store, db.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown snapshot store %q", cfg.SnapshotStore)
}
