// Package resilience wraps external delivery calls in a circuit breaker and
// a bounded exponential-backoff retry.
package resilience

import (
	"fmt"
	"sync"
	"time"
)

// State is the current circuit breaker state.
type State int

const (
	// StateClosed: normal operation, calls pass through, failures counted.
	StateClosed State = iota

	// StateOpen: too many failures, calls fail fast until the reset timeout.
	StateOpen

	// StateHalfOpen: one trial call allowed to probe recovery.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitOpenError is returned when the breaker rejects a call without
// invoking the wrapped operation.
type CircuitOpenError struct {
	Operation  string
	OpenedAt   time.Time
	RetryAfter time.Time
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open for %s (opened at %s, retry after %s)",
		e.Operation, e.OpenedAt.Format(time.RFC3339), e.RetryAfter.Format(time.RFC3339))
}

// BreakerConfig holds circuit breaker tuning.
type BreakerConfig struct {
	// FailureRatio is the failure fraction within the window that trips the
	// breaker. Default 0.5.
	FailureRatio float64

	// MinRequests is the minimum number of calls in the window before the
	// ratio is evaluated; below it the breaker never trips. Default 3.
	MinRequests int

	// Window bounds how long call outcomes count toward the ratio; counters
	// reset when it elapses. Default 10s.
	Window time.Duration

	// OpenTimeout is how long the breaker stays open before allowing a
	// half-open trial. Default 30s.
	OpenTimeout time.Duration
}

// DefaultBreakerConfig mirrors the gateway defaults: 50% failures over at
// least 3 calls in a 10s window, 30s open.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureRatio: 0.5,
		MinRequests:  3,
		Window:       10 * time.Second,
		OpenTimeout:  30 * time.Second,
	}
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	d := DefaultBreakerConfig()
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = d.FailureRatio
	}
	if c.MinRequests < 1 {
		c.MinRequests = d.MinRequests
	}
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = d.OpenTimeout
	}
	return c
}

// Breaker is a three-state circuit breaker guarding one external operation
// kind. All state transitions happen under a single mutex, so concurrent
// callers observe them atomically. One instance lives for the process
// lifetime per operation kind; unrelated operations get unrelated breakers.
type Breaker struct {
	operation string
	config    BreakerConfig

	// OnStateChange, when set, observes every transition. Called outside
	// the lock; must not call back into the breaker synchronously... it may
	// log or count, nothing more.
	OnStateChange func(operation string, from, to State)

	mu           sync.Mutex
	state        State
	failures     int
	total        int
	windowStart  time.Time
	openedAt     time.Time
	trialPending bool

	now func() time.Time
}

// NewBreaker creates a breaker for the named operation kind.
func NewBreaker(operation string, config BreakerConfig) *Breaker {
	return &Breaker{
		operation: operation,
		config:    config.withDefaults(),
		state:     StateClosed,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed. In the open state it returns a
// CircuitOpenError until the open timeout elapses, at which point one
// half-open trial is admitted; further callers keep failing fast until the
// trial's outcome is recorded.
func (b *Breaker) Allow() error {
	b.mu.Lock()

	switch b.state {
	case StateClosed:
		b.mu.Unlock()
		return nil

	case StateOpen:
		if b.now().Sub(b.openedAt) >= b.config.OpenTimeout {
			from := b.state
			b.state = StateHalfOpen
			b.trialPending = true
			b.mu.Unlock()
			b.notify(from, StateHalfOpen)
			return nil
		}
		err := b.openError()
		b.mu.Unlock()
		return err

	case StateHalfOpen:
		if b.trialPending {
			err := b.openError()
			b.mu.Unlock()
			return err
		}
		b.trialPending = true
		b.mu.Unlock()
		return nil

	default:
		b.mu.Unlock()
		return nil
	}
}

// RecordSuccess records a successful call. A half-open success closes the
// breaker and resets the counters. In the open state the outcome is stale:
// the call was admitted before the trip, and only the open timeout governs
// recovery, so it is ignored.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()

	switch b.state {
	case StateClosed:
		b.observe(false)
		b.mu.Unlock()

	case StateHalfOpen:
		from := b.state
		b.reset()
		b.mu.Unlock()
		b.notify(from, StateClosed)

	case StateOpen:
		b.mu.Unlock()
	}
}

// RecordFailure records a failed call. In the closed state it may trip the
// breaker once the windowed failure ratio crosses the threshold; a half-open
// failure reopens immediately.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()

	switch b.state {
	case StateClosed:
		b.observe(true)
		if b.total >= b.config.MinRequests &&
			float64(b.failures)/float64(b.total) >= b.config.FailureRatio {
			b.state = StateOpen
			b.openedAt = b.now()
			b.mu.Unlock()
			b.notify(StateClosed, StateOpen)
			return
		}
		b.mu.Unlock()

	case StateHalfOpen:
		b.state = StateOpen
		b.openedAt = b.now()
		b.trialPending = false
		b.mu.Unlock()
		b.notify(StateHalfOpen, StateOpen)

	case StateOpen:
		b.mu.Unlock()
	}
}

// State returns the current state without advancing transitions.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// observe counts one call outcome, rolling the window when it has elapsed.
// Caller holds the lock.
func (b *Breaker) observe(failed bool) {
	now := b.now()
	if b.windowStart.IsZero() || now.Sub(b.windowStart) >= b.config.Window {
		b.windowStart = now
		b.failures = 0
		b.total = 0
	}
	b.total++
	if failed {
		b.failures++
	}
}

// reset returns to closed with clean counters. Caller holds the lock.
func (b *Breaker) reset() {
	b.state = StateClosed
	b.failures = 0
	b.total = 0
	b.windowStart = time.Time{}
	b.trialPending = false
}

// openError builds the rejection. Caller holds the lock.
func (b *Breaker) openError() *CircuitOpenError {
	return &CircuitOpenError{
		Operation:  b.operation,
		OpenedAt:   b.openedAt,
		RetryAfter: b.openedAt.Add(b.config.OpenTimeout),
	}
}

func (b *Breaker) notify(from, to State) {
	if b.OnStateChange != nil && from != to {
		b.OnStateChange(b.operation, from, to)
	}
}
