package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// CircuitBreakerService stops hammering the provider after repeated failures.
// While open, refreshes fail fast and the tournament cache keeps serving the
// last good snapshot.
type CircuitBreakerService struct {
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// abandonedError marks a failure that happened after the caller stopped
// waiting. It does not count against the provider.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }

func (e *abandonedError) Unwrap() error { return e.err }

// NewCircuitBreakerService trips after threshold consecutive failures and
// half-opens after timeout. A threshold of zero disables the breaker.
func NewCircuitBreakerService(name string, threshold int, timeout time.Duration, logger *logrus.Logger) *CircuitBreakerService {
	if threshold <= 0 {
		return &CircuitBreakerService{logger: logger}
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		IsSuccessful: func(err error) bool {
			var abandoned *abandonedError
			return err == nil || errors.As(err, &abandoned)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	return &CircuitBreakerService{
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Execute wraps a function call with circuit breaker protection. Failures
// seen after ctx is done are returned but not counted.
func (cb *CircuitBreakerService) Execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if cb == nil || cb.breaker == nil {
		return fn()
	}

	result, err := cb.breaker.Execute(func() (interface{}, error) {
		result, err := fn()
		if err != nil && ctx.Err() != nil {
			return nil, &abandonedError{err: err}
		}
		return result, err
	})

	var abandoned *abandonedError
	if errors.As(err, &abandoned) {
		return nil, abandoned.err
	}
	return result, err
}

// State returns the current state of the breaker
func (cb *CircuitBreakerService) State() gobreaker.State {
	if cb == nil || cb.breaker == nil {
		return gobreaker.StateClosed
	}
	return cb.breaker.State()
}

// Counts returns the current counts of the breaker
func (cb *CircuitBreakerService) Counts() gobreaker.Counts {
	if cb == nil || cb.breaker == nil {
		return gobreaker.Counts{}
	}
	return cb.breaker.Counts()
}
