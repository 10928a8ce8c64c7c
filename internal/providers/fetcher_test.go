package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeClock advances only when the fetcher sleeps
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 4, 12, 15, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

func newTestFetcher(baseURL string, clock *fakeClock) *RateLimitedFetcher {
	cfg := DefaultFetcherConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-api-key"
	return NewRateLimitedFetcher(cfg, testLogger(), WithClock(clock.Now), WithSleeper(clock.Sleep))
}

// statusSequence answers with the given statuses in order, then 200
func statusSequence(t *testing.T, statuses ...int) (*httptest.Server, *int32) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		if int(n) <= len(statuses) && statuses[n-1] != http.StatusOK {
			w.WriteHeader(statuses[n-1])
			w.Write([]byte(`{"message":"slow down"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestRateLimitedFetcher_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2025/tournaments/abc/leaderboard.json", r.URL.Path)
		assert.Equal(t, "test-api-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	clock := newFakeClock()
	fetcher := newTestFetcher(server.URL, clock)

	var dest struct {
		OK bool `json:"ok"`
	}
	err := fetcher.Fetch(context.Background(), "2025/tournaments/abc/leaderboard.json", nil, &dest)

	require.NoError(t, err)
	assert.True(t, dest.OK)
	assert.Equal(t, 0, fetcher.RetryCount())
	assert.Equal(t, clock.Now(), fetcher.LastRequest())
	assert.Empty(t, clock.Sleeps())
}

func TestRateLimitedFetcher_MinInterval(t *testing.T) {
	server, hits := statusSequence(t)
	clock := newFakeClock()
	fetcher := newTestFetcher(server.URL, clock)

	var dest map[string]interface{}
	require.NoError(t, fetcher.Fetch(context.Background(), "a.json", nil, &dest))
	require.NoError(t, fetcher.Fetch(context.Background(), "b.json", nil, &dest))

	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, clock.Sleeps())
}

func TestRateLimitedFetcher_RetriesRateLimit(t *testing.T) {
	server, hits := statusSequence(t, http.StatusTooManyRequests, http.StatusTooManyRequests)
	clock := newFakeClock()
	fetcher := newTestFetcher(server.URL, clock)

	var dest map[string]interface{}
	err := fetcher.Fetch(context.Background(), "leaderboard.json", nil, &dest)

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, clock.Sleeps())
	assert.Equal(t, 0, fetcher.RetryCount(), "success resets the retry counter")
}

func TestRateLimitedFetcher_RateLimitExhausted(t *testing.T) {
	server, hits := statusSequence(t, 429, 429, 429, 429, 429)
	clock := newFakeClock()
	fetcher := newTestFetcher(server.URL, clock)

	var dest map[string]interface{}
	err := fetcher.Fetch(context.Background(), "leaderboard.json", nil, &dest)

	assert.ErrorIs(t, err, ErrRateLimitExhausted)
	assert.Equal(t, int32(3), atomic.LoadInt32(hits), "one attempt plus two retries")
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, clock.Sleeps())
	assert.Equal(t, 0, fetcher.RetryCount(), "exhaustion resets the retry counter")

	// The next call starts with a fresh retry budget
	err = fetcher.Fetch(context.Background(), "leaderboard.json", nil, &dest)
	require.NoError(t, err)
}

func TestRateLimitedFetcher_BackoffIsCapped(t *testing.T) {
	cfg := DefaultFetcherConfig()
	cfg.APIKey = "k"
	fetcher := NewRateLimitedFetcher(cfg, testLogger())

	assert.Equal(t, 2*time.Second, fetcher.backoff(1))
	assert.Equal(t, 16*time.Second, fetcher.backoff(4))
	assert.Equal(t, 30*time.Second, fetcher.backoff(5))
	assert.Equal(t, 30*time.Second, fetcher.backoff(40))
}

func TestRateLimitedFetcher_UpstreamError(t *testing.T) {
	server, hits := statusSequence(t, http.StatusNotFound)
	clock := newFakeClock()
	fetcher := newTestFetcher(server.URL, clock)

	var dest map[string]interface{}
	err := fetcher.Fetch(context.Background(), "missing.json", nil, &dest)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusNotFound, upstream.Status)
	assert.Contains(t, upstream.Body, "slow down")
	assert.Equal(t, int32(1), atomic.LoadInt32(hits), "only 429 is retried")
}

func TestRateLimitedFetcher_UndecodableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL, newFakeClock())

	var dest map[string]interface{}
	err := fetcher.Fetch(context.Background(), "leaderboard.json", nil, &dest)

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.NotContains(t, transport.URL, "test-api-key")
	assert.Contains(t, transport.URL, "REDACTED")
}

func TestRateLimitedFetcher_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	fetcher := newTestFetcher(baseURL, newFakeClock())

	var dest map[string]interface{}
	err := fetcher.Fetch(context.Background(), "leaderboard.json", nil, &dest)

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.False(t, strings.Contains(err.Error(), "test-api-key"))
}

func TestRateLimitedFetcher_MissingAPIKey(t *testing.T) {
	fetcher := NewRateLimitedFetcher(DefaultFetcherConfig(), testLogger())

	var dest map[string]interface{}
	err := fetcher.Fetch(context.Background(), "leaderboard.json", nil, &dest)

	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestRateLimitedFetcher_CancelledWaitReleasesTurn(t *testing.T) {
	server, hits := statusSequence(t)
	clock := newFakeClock()
	sleep := func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return clock.Sleep(ctx, d)
	}

	cfg := DefaultFetcherConfig()
	cfg.BaseURL = server.URL
	cfg.APIKey = "test-api-key"
	fetcher := NewRateLimitedFetcher(cfg, testLogger(), WithClock(clock.Now), WithSleeper(sleep))

	var dest map[string]interface{}
	require.NoError(t, fetcher.Fetch(context.Background(), "a.json", nil, &dest))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	err := fetcher.Fetch(cancelled, "b.json", nil, &dest)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, fetcher.Fetch(context.Background(), "c.json", nil, &dest))
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, clock.Sleeps(), "the abandoned turn is given back")
}
