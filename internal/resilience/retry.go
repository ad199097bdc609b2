package resilience

import (
	"context"
	"time"
)

// RetryPolicy bounds how often a failed dispatch attempt is repeated.
// Attempt k (1-indexed) waits initialDelay * factor^(k-2) before running;
// after MaxAttempts failures the last error is surfaced unchanged.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Factor       float64
}

// DefaultRetryPolicy matches the gateway defaults: 3 attempts, 1s initial
// delay, doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Factor:       2,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = d.InitialDelay
	}
	if p.Factor < 1 {
		p.Factor = d.Factor
	}
	return p
}

// Delay returns the backoff before attempt k (1-indexed). Attempt 1 runs
// immediately.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	delay := float64(p.InitialDelay)
	for i := 1; i < attempt-1; i++ {
		delay *= p.Factor
	}
	return time.Duration(delay)
}

// sleep waits for d or until the context is done, whichever comes first.
// Backoff waits are the loop's only suspension points and must stay
// cancelable.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
