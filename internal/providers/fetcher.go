package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/stigscousin/millerlite-leaderboard/internal/metrics"
)

const maxErrorBody = 4 << 10

// FetcherConfig controls pacing and retries of outbound provider calls
type FetcherConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MinInterval time.Duration
	MaxRetries  int
	BackoffUnit time.Duration
	// MaxBackoff caps the exponential backoff, in BackoffUnit multiples
	MaxBackoff int
}

// DefaultFetcherConfig mirrors the production pacing of the provider trial plan
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		BaseURL:     "https://api.sportradar.com/golf/trial/pga/v3/en",
		Timeout:     10 * time.Second,
		MinInterval: 500 * time.Millisecond,
		MaxRetries:  2,
		BackoffUnit: time.Second,
		MaxBackoff:  30,
	}
}

// FetcherOption customizes a RateLimitedFetcher
type FetcherOption func(*RateLimitedFetcher)

// WithClock replaces the wall clock used for request pacing
func WithClock(now func() time.Time) FetcherOption {
	return func(f *RateLimitedFetcher) {
		f.now = now
	}
}

// WithSleeper replaces the function used to wait between requests
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) FetcherOption {
	return func(f *RateLimitedFetcher) {
		f.sleep = sleep
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *RateLimitedFetcher) {
		f.httpClient = client
	}
}

// RateLimitedFetcher issues GET requests to the provider one at a time,
// spaced by a minimum interval, retrying only on 429 responses.
type RateLimitedFetcher struct {
	httpClient  *http.Client
	logger      *logrus.Logger
	baseURL     string
	apiKey      string
	limiter     *rate.Limiter
	maxRetries  int
	backoffUnit time.Duration
	maxBackoff  int
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error

	mu          sync.Mutex
	retryCount  int
	lastRequest time.Time
}

// NewRateLimitedFetcher creates a fetcher for the given provider config
func NewRateLimitedFetcher(cfg FetcherConfig, logger *logrus.Logger, opts ...FetcherOption) *RateLimitedFetcher {
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	if cfg.BackoffUnit <= 0 {
		cfg.BackoffUnit = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30
	}

	f := &RateLimitedFetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:      logger,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		limiter:     rate.NewLimiter(limit, 1),
		maxRetries:  cfg.MaxRetries,
		backoffUnit: cfg.BackoffUnit,
		maxBackoff:  cfg.MaxBackoff,
		now:         time.Now,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs GET {baseURL}/{endpoint}?api_key=... and decodes the JSON
// body into dest
func (f *RateLimitedFetcher) Fetch(ctx context.Context, endpoint string, query url.Values, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.apiKey == "" {
		return ErrMissingAPIKey
	}

	params := url.Values{}
	for k, v := range query {
		params[k] = v
	}
	params.Set("api_key", f.apiKey)
	requestURL := fmt.Sprintf("%s/%s?%s", f.baseURL, strings.TrimLeft(endpoint, "/"), params.Encode())
	label := path.Base(endpoint)

	for {
		if err := f.waitTurn(ctx); err != nil {
			return &TransportError{URL: redact(requestURL), Err: err}
		}

		status, body, err := f.do(ctx, requestURL)
		f.lastRequest = f.now()
		if err != nil {
			metrics.UpstreamRequests.WithLabelValues(label, "transport_error").Inc()
			return &TransportError{URL: redact(requestURL), Err: err}
		}

		switch {
		case status == http.StatusTooManyRequests:
			metrics.UpstreamRequests.WithLabelValues(label, "rate_limited").Inc()
			if f.retryCount >= f.maxRetries {
				f.logger.WithFields(logrus.Fields{
					"endpoint":    label,
					"max_retries": f.maxRetries,
				}).Error("Max retries reached for rate limit")
				f.retryCount = 0
				return ErrRateLimitExhausted
			}
			f.retryCount++
			wait := f.backoff(f.retryCount)
			f.logger.WithFields(logrus.Fields{
				"endpoint": label,
				"attempt":  f.retryCount,
				"wait":     wait.String(),
			}).Warn("Rate limited by provider, backing off")
			if err := f.sleep(ctx, wait); err != nil {
				return &TransportError{URL: redact(requestURL), Err: err}
			}
			continue

		case status < 200 || status > 299:
			metrics.UpstreamRequests.WithLabelValues(label, "upstream_error").Inc()
			f.logger.WithFields(logrus.Fields{
				"endpoint": label,
				"status":   status,
			}).Error("Provider returned an error response")
			return &UpstreamError{Status: status, Body: truncate(body, maxErrorBody)}
		}

		f.retryCount = 0
		metrics.UpstreamRequests.WithLabelValues(label, "success").Inc()
		if err := json.Unmarshal(body, dest); err != nil {
			return &TransportError{URL: redact(requestURL), Err: fmt.Errorf("failed to decode response: %w", err)}
		}
		return nil
	}
}

// RetryCount returns the current rate-limit retry counter
func (f *RateLimitedFetcher) RetryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.retryCount
}

// LastRequest returns the time the last response (or failure) was observed
func (f *RateLimitedFetcher) LastRequest() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRequest
}

func (f *RateLimitedFetcher) waitTurn(ctx context.Context) error {
	now := f.now()
	reservation := f.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return errors.New("rate limiter refused reservation")
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		if err := f.sleep(ctx, delay); err != nil {
			reservation.CancelAt(f.now())
			return err
		}
	}
	return nil
}

// backoff returns min(2^retry, maxBackoff) units
func (f *RateLimitedFetcher) backoff(retry int) time.Duration {
	units := f.maxBackoff
	if retry < 31 && 1<<retry < units {
		units = 1 << retry
	}
	return time.Duration(units) * f.backoffUnit
}

func (f *RateLimitedFetcher) do(ctx context.Context, requestURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, nil, redactError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n])
	}
	return string(body)
}

// redact strips the api key from URLs that end up in logs and errors
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// redactError strips the api key from errors that carry the request URL
func redactError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redact(urlErr.URL)
	}
	return err
}
