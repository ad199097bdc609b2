package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 4, InitialDelay: time.Second, Factor: 2}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 0}, // first attempt is immediate
		{2, 1 * time.Second},
		{3, 2 * time.Second},
		{4, 4 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, p.Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestRetryPolicy_Defaults(t *testing.T) {
	p := RetryPolicy{}.withDefaults()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.InitialDelay)
	assert.Equal(t, float64(2), p.Factor)
}

func TestSleep_CancelableByContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- sleep(ctx, time.Minute)
	}()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sleep did not abort on cancellation")
	}
}

func TestSleep_ZeroDurationReturnsImmediately(t *testing.T) {
	assert.NoError(t, sleep(context.Background(), 0))
}
