package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stigscousin/millerlite-leaderboard/internal/models"
)

// ErrSnapshotNotFound is returned when no snapshot was persisted for a tournament
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore mirrors the cached snapshot outside the process
type SnapshotStore interface {
	Save(ctx context.Context, tournamentID string, stored models.StoredSnapshot) error
	Load(ctx context.Context, tournamentID string) (*models.StoredSnapshot, error)
}

// CacheProvider is the subset of CacheService used by the redis store
type CacheProvider interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

const (
	redisSaveAttempts   = 3
	redisSaveRetryDelay = 100 * time.Millisecond
)

// RedisSnapshotStore keeps the latest snapshot in redis
type RedisSnapshotStore struct {
	cache      CacheProvider
	expiration time.Duration
	attempts   int
	retryDelay time.Duration
}

// NewRedisSnapshotStore creates a redis-backed store. Entries expire after
// expiration; zero keeps them forever.
func NewRedisSnapshotStore(cache CacheProvider, expiration time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{
		cache:      cache,
		expiration: expiration,
		attempts:   redisSaveAttempts,
		retryDelay: redisSaveRetryDelay,
	}
}

// Save writes the snapshot, retrying failed writes with a linear delay
func (s *RedisSnapshotStore) Save(ctx context.Context, tournamentID string, stored models.StoredSnapshot) error {
	key := SnapshotCacheKey(tournamentID)

	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if err = s.cache.Set(ctx, key, stored, s.expiration); err == nil {
			return nil
		}
		if attempt == s.attempts {
			break
		}

		timer := time.NewTimer(s.retryDelay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("failed to save snapshot after %d attempts: %w", s.attempts, err)
}

func (s *RedisSnapshotStore) Load(ctx context.Context, tournamentID string) (*models.StoredSnapshot, error) {
	var stored models.StoredSnapshot
	if err := s.cache.Get(ctx, SnapshotCacheKey(tournamentID), &stored); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	if stored.Snapshot == nil {
		return nil, ErrSnapshotNotFound
	}
	return &stored, nil
}

// GormSnapshotStore keeps the latest snapshot per tournament in a SQL table
type GormSnapshotStore struct {
	db *gorm.DB
}

// NewGormSnapshotStore creates a SQL-backed store
func NewGormSnapshotStore(db *gorm.DB) *GormSnapshotStore {
	return &GormSnapshotStore{db: db}
}

// Migrate creates the snapshot table
func (s *GormSnapshotStore) Migrate() error {
	return s.db.AutoMigrate(&models.SnapshotRecord{})
}

func (s *GormSnapshotStore) Save(ctx context.Context, tournamentID string, stored models.StoredSnapshot) error {
	if stored.Snapshot == nil {
		return errors.New("cannot persist empty snapshot")
	}

	payload, err := json.Marshal(stored.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	record := models.SnapshotRecord{
		TournamentID: tournamentID,
		Round:        stored.Snapshot.Tournament.Round,
		Payload:      payload,
		FetchedAt:    stored.FetchedAt.UTC(),
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tournament_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"round", "payload", "fetched_at", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *GormSnapshotStore) Load(ctx context.Context, tournamentID string) (*models.StoredSnapshot, error) {
	var record models.SnapshotRecord
	err := s.db.WithContext(ctx).First(&record, "tournament_id = ?", tournamentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snapshot models.TournamentSnapshot
	if err := json.Unmarshal(record.Payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode stored snapshot: %w", err)
	}

	return &models.StoredSnapshot{
		Snapshot:  &snapshot,
		FetchedAt: record.FetchedAt,
	}, nil
}
