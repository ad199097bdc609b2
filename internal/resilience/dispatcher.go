package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sms-notifier/internal/common/logger"
	"sms-notifier/internal/common/metrics"
)

// Operation is one attemptable external call. The context carries the
// per-attempt timeout; implementations must respect it.
type Operation func(ctx context.Context) error

// DispatchError is the terminal failure after the retry budget is spent.
type DispatchError struct {
	Operation string
	Attempts  int
	Cancelled bool
	LastErr   error
}

func (e *DispatchError) Error() string {
	if e.Cancelled {
		return fmt.Sprintf("dispatch %s cancelled after %d attempt(s): %v", e.Operation, e.Attempts, e.LastErr)
	}
	return fmt.Sprintf("dispatch %s failed after %d attempt(s): %v", e.Operation, e.Attempts, e.LastErr)
}

func (e *DispatchError) Unwrap() error {
	return e.LastErr
}

// DispatcherConfig tunes one dispatcher.
type DispatcherConfig struct {
	Retry   RetryPolicy
	Breaker BreakerConfig

	// AttemptTimeout bounds a single attempt; an attempt exceeding it counts
	// as a failure for both the breaker and the retry budget. Default 5s.
	AttemptTimeout time.Duration
}

// Dispatcher runs operations through a circuit breaker inside a bounded
// retry loop. Retry is the outer layer: every attempt re-evaluates breaker
// state, so an open breaker fails attempts fast while backoff delays still
// space them out. Many concurrent dispatches of the same operation kind
// share the one breaker.
type Dispatcher struct {
	operation string
	breaker   *Breaker
	retry     RetryPolicy
	timeout   time.Duration
	log       logger.Logger
}

// NewDispatcher wires a dispatcher for the named operation kind.
func NewDispatcher(operation string, config DispatcherConfig, log logger.Logger) *Dispatcher {
	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = 5 * time.Second
	}
	breaker := NewBreaker(operation, config.Breaker)
	breaker.OnStateChange = func(op string, from, to State) {
		metrics.BreakerTransitions.WithLabelValues(op, to.String()).Inc()
		switch to {
		case StateOpen:
			log.Warn("circuit breaker opened, too many failures", map[string]interface{}{
				"operation": op, "from": from.String(),
			})
		case StateClosed:
			log.Info("circuit breaker closed, service is operating normally", map[string]interface{}{
				"operation": op, "from": from.String(),
			})
		case StateHalfOpen:
			log.Info("circuit breaker half-open, probing recovery", map[string]interface{}{
				"operation": op,
			})
		}
	}
	return &Dispatcher{
		operation: operation,
		breaker:   breaker,
		retry:     config.Retry.withDefaults(),
		timeout:   config.AttemptTimeout,
		log:       log.WithFields(map[string]interface{}{"operation": operation}),
	}
}

// Breaker exposes the underlying breaker for state inspection.
func (d *Dispatcher) Breaker() *Breaker {
	return d.breaker
}

// Dispatch runs op until it succeeds, the retry budget is spent, or ctx is
// cancelled. Open-breaker rejections consume retry attempts without
// invoking op; backoff delays are honored between attempts either way.
func (d *Dispatcher) Dispatch(ctx context.Context, op Operation) error {
	started := time.Now()
	defer func() {
		metrics.DispatchDuration.WithLabelValues(d.operation).Observe(time.Since(started).Seconds())
	}()

	var lastErr error
	for attempt := 1; attempt <= d.retry.MaxAttempts; attempt++ {
		if err := sleep(ctx, d.retry.Delay(attempt)); err != nil {
			return &DispatchError{
				Operation: d.operation,
				Attempts:  attempt - 1,
				Cancelled: true,
				LastErr:   firstNonNil(lastErr, err),
			}
		}

		metrics.DispatchAttempts.WithLabelValues(d.operation).Inc()

		if err := d.breaker.Allow(); err != nil {
			lastErr = err
			metrics.DispatchFailures.WithLabelValues(d.operation, "circuit_open").Inc()
			continue
		}

		err := d.attempt(ctx, op)
		if err == nil {
			d.breaker.RecordSuccess()
			return nil
		}

		d.breaker.RecordFailure()
		lastErr = err
		metrics.DispatchFailures.WithLabelValues(d.operation, failureReason(err)).Inc()

		if ctx.Err() != nil {
			return &DispatchError{
				Operation: d.operation,
				Attempts:  attempt,
				Cancelled: true,
				LastErr:   lastErr,
			}
		}

		if attempt < d.retry.MaxAttempts {
			d.log.Warn("attempt failed, retrying", map[string]interface{}{
				"attempt":     attempt,
				"maxAttempts": d.retry.MaxAttempts,
				"error":       err.Error(),
			})
		}
	}

	return &DispatchError{
		Operation: d.operation,
		Attempts:  d.retry.MaxAttempts,
		LastErr:   lastErr,
	}
}

// attempt runs op under the per-attempt timeout. A timed-out attempt is a
// failure like any other.
func (d *Dispatcher) attempt(ctx context.Context, op Operation) error {
	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return op(attemptCtx)
}

func failureReason(err error) string {
	var open *CircuitOpenError
	switch {
	case errors.As(err, &open):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "gateway_error"
	}
}

func firstNonNil(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
