package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigscousin/millerlite-leaderboard/internal/models"
	"github.com/stigscousin/millerlite-leaderboard/internal/providers"
)

const testTournamentID = "2cba1945-dc1c-4131-92f4-cfdac8c45060"

type stubSource struct {
	mu    sync.Mutex
	calls int
	err   error
	delay time.Duration
}

func (s *stubSource) FetchSnapshot(ctx context.Context) (*models.TournamentSnapshot, error) {
	s.mu.Lock()
	s.calls++
	call, err, delay := s.calls, s.err, s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return &models.TournamentSnapshot{
		Tournament: models.TournamentInfo{ID: testTournamentID, Name: "The Masters Tournament", Round: call},
		Leaderboard: map[string]models.DisplayRecord{
			"Rory McIlroy": {Position: "1", PositionNumber: models.RankOf(1), Score: fmt.Sprintf("-%d", call)},
		},
	}, nil
}

func (s *stubSource) TournamentID() string { return testTournamentID }

func (s *stubSource) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *stubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 4, 12, 14, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memorySnapshotStore keeps stored snapshots in a map
type memorySnapshotStore struct {
	mu   sync.Mutex
	data map[string]models.StoredSnapshot
	err  error
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{data: make(map[string]models.StoredSnapshot)}
}

func (m *memorySnapshotStore) Save(ctx context.Context, tournamentID string, stored models.StoredSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[tournamentID] = stored
	return nil
}

func (m *memorySnapshotStore) Load(ctx context.Context, tournamentID string) (*models.StoredSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.data[tournamentID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return &stored, nil
}

func newTestCache(source SnapshotSource, clock *testClock, window RefreshWindow, opts ...TournamentCacheOption) *TournamentCache {
	opts = append([]TournamentCacheOption{WithCacheClock(clock.Now)}, opts...)
	return NewTournamentCache(source, TournamentCacheConfig{
		TTL:           600 * time.Second,
		RefreshWindow: window,
	}, testLogger(), opts...)
}

func TestTournamentCache_TTL(t *testing.T) {
	source := &stubSource{}
	clock := newTestClock()
	cache := newTestCache(source, clock, nil)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, source.Calls())

	clock.Advance(300 * time.Second)
	second, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second, "fresh reads return the cached snapshot")
	assert.Equal(t, 1, source.Calls())

	clock.Advance(300 * time.Second)
	atTTL, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, atTTL, "a snapshot exactly TTL old is still fresh")

	clock.Advance(100 * time.Second)
	third, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, source.Calls())
	assert.Equal(t, 2, third.Tournament.Round)
}

func TestTournamentCache_StaleOnFailure(t *testing.T) {
	source := &stubSource{}
	clock := newTestClock()
	cache := newTestCache(source, clock, nil)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	_, fetchedAt, _ := cache.Peek()

	source.setErr(&providers.TransportError{URL: "http://provider", Err: errors.New("timeout")})
	clock.Advance(700 * time.Second)

	stale, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, stale)
	assert.Equal(t, 2, source.Calls())

	_, stillFetchedAt, ok := cache.Peek()
	assert.True(t, ok)
	assert.Equal(t, fetchedAt, stillFetchedAt, "a failed refresh keeps the old fetch time")

	// Every read after expiry retries the provider
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, source.Calls())
}

func TestTournamentCache_DataUnavailable(t *testing.T) {
	source := &stubSource{err: providers.ErrRateLimitExhausted}
	cache := newTestCache(source, newTestClock(), nil)

	snapshot, err := cache.Get(context.Background())

	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.False(t, errors.Is(err, providers.ErrRateLimitExhausted), "provider errors do not leak past the cache")

	_, _, ok := cache.Peek()
	assert.False(t, ok)
}

func TestTournamentCache_RefreshWindow(t *testing.T) {
	source := &stubSource{}
	clock := newTestClock()
	open := false
	window := func(time.Time) bool { return open }
	cache := newTestCache(source, clock, window)
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err, "an empty cache refreshes even outside the window")
	assert.Equal(t, 1, source.Calls())

	clock.Advance(time.Hour)
	stale, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, stale)
	assert.Equal(t, 1, source.Calls(), "no refresh outside the window")

	open = true
	fresh, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
	assert.Equal(t, 2, source.Calls())
}

func TestTournamentCache_PersistsAndRestores(t *testing.T) {
	store := newMemorySnapshotStore()
	clock := newTestClock()
	ctx := context.Background()

	warm := newTestCache(&stubSource{}, clock, nil, WithSnapshotStore(store))
	saved, err := warm.Get(ctx)
	require.NoError(t, err)

	stored, err := store.Load(ctx, testTournamentID)
	require.NoError(t, err)
	assert.Same(t, saved, stored.Snapshot)
	assert.Equal(t, clock.Now(), stored.FetchedAt)

	// A new process whose provider is down serves the persisted snapshot
	failing := &stubSource{err: errors.New("provider down")}
	clock.Advance(time.Hour)
	cold := newTestCache(failing, clock, nil, WithSnapshotStore(store))

	restored, err := cold.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, saved, restored)
	assert.Equal(t, 1, failing.Calls())

	// The restored snapshot is old, so the next read tries the provider again
	_, err = cold.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, failing.Calls())
}

func TestTournamentCache_RestoreIgnoresOtherTournament(t *testing.T) {
	store := newMemorySnapshotStore()
	store.data[testTournamentID] = models.StoredSnapshot{
		Snapshot:  &models.TournamentSnapshot{Tournament: models.TournamentInfo{ID: "other-tournament"}},
		FetchedAt: time.Now(),
	}

	cache := newTestCache(&stubSource{err: errors.New("provider down")}, newTestClock(), nil, WithSnapshotStore(store))

	_, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestTournamentCache_StoreFailureDoesNotFailRead(t *testing.T) {
	store := newMemorySnapshotStore()
	store.err = errors.New("disk full")

	cache := newTestCache(&stubSource{}, newTestClock(), nil, WithSnapshotStore(store))

	snapshot, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snapshot)
}

func TestTournamentCache_ConcurrentReadsShareRefresh(t *testing.T) {
	source := &stubSource{delay: 20 * time.Millisecond}
	cache := newTestCache(source, newTestClock(), nil)

	var wg sync.WaitGroup
	results := make([]*models.TournamentSnapshot, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshot, err := cache.Get(context.Background())
			assert.NoError(t, err)
			results[i] = snapshot
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, source.Calls())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

// contextSource answers after delay unless ctx is done first
type contextSource struct {
	delay time.Duration
	calls int
}

func (s *contextSource) FetchSnapshot(ctx context.Context) (*models.TournamentSnapshot, error) {
	s.calls++
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
	}
	return &models.TournamentSnapshot{
		Tournament: models.TournamentInfo{ID: testTournamentID, Round: 2},
	}, nil
}

func (s *contextSource) TournamentID() string { return testTournamentID }

func TestTournamentCache_RefreshOutlivesReader(t *testing.T) {
	source := &contextSource{delay: 50 * time.Millisecond}
	cache := NewTournamentCache(source, TournamentCacheConfig{TTL: 10 * time.Minute}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	snapshot, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Tournament.Round)

	snapshot, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Tournament.Round)
	assert.Equal(t, 1, source.calls)
}
