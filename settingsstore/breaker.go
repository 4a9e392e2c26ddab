package settingsstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// BreakerState mirrors the closed/open/half-open states of
// src/storage/circuit_breaker_hybrid.go's HybridCircuitBreaker, scaled
// down to a single-process, non-distributed breaker: no bucketed rolling
// window or cross-instance propagation, since a settings store backend
// here has at most one local caller.
type BreakerState string

const (
	BreakerClosed   BreakerState = "CLOSED"
	BreakerOpen     BreakerState = "OPEN"
	BreakerHalfOpen BreakerState = "HALF_OPEN"
)

// BreakerOpenError is returned by CircuitBreaker.Save/Load while open.
type BreakerOpenError struct {
	Reason     string
	RetryAfter time.Time
}

func (e *BreakerOpenError) Error() string {
	return fmt.Sprintf("settingsstore: circuit open: %s (retry after %s)", e.Reason, e.RetryAfter.Format(time.RFC3339))
}

// IsBreakerOpen reports whether err is a BreakerOpenError.
func IsBreakerOpen(err error) bool {
	var boe *BreakerOpenError
	return errors.As(err, &boe)
}

// CircuitBreaker wraps a Store, opening after FailureThreshold
// consecutive failures and refusing calls until ResetTimeout elapses,
// after which a single half-open trial is allowed through.
type CircuitBreaker struct {
	inner            Store
	failureThreshold int
	resetTimeout     time.Duration

	mu         sync.Mutex
	state      BreakerState
	failures   int
	openedAt   time.Time
	retryAfter time.Time
	reason     string
}

// NewCircuitBreaker wraps inner, opening after failureThreshold
// consecutive failures and staying open for resetTimeout.
func NewCircuitBreaker(inner Store, failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		inner:            inner,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		state:            BreakerClosed,
	}
}

func (b *CircuitBreaker) allow() (bool, time.Time, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen && time.Now().After(b.retryAfter) {
		b.state = BreakerHalfOpen
	}
	if b.state == BreakerOpen {
		return false, b.retryAfter, b.reason
	}
	return true, time.Time{}, ""
}

func (b *CircuitBreaker) recordResult(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		b.state = BreakerClosed
		return
	}

	b.failures++
	b.reason = err.Error()
	if b.failures >= b.failureThreshold {
		b.state = BreakerOpen
		b.openedAt = time.Now()
		b.retryAfter = b.openedAt.Add(b.resetTimeout)
	}
}

func (b *CircuitBreaker) Save(ctx context.Context, key string, data []byte) error {
	ok, retryAfter, reason := b.allow()
	if !ok {
		return &BreakerOpenError{Reason: reason, RetryAfter: retryAfter}
	}
	err := b.inner.Save(ctx, key, data)
	b.recordResult(err)
	return err
}

func (b *CircuitBreaker) Load(ctx context.Context, key string) ([]byte, bool, error) {
	ok, retryAfter, reason := b.allow()
	if !ok {
		return nil, false, &BreakerOpenError{Reason: reason, RetryAfter: retryAfter}
	}
	data, found, err := b.inner.Load(ctx, key)
	b.recordResult(err)
	return data, found, err
}
