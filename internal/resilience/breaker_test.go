package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives breaker time deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestBreaker(cfg BreakerConfig) (*Breaker, *fakeClock) {
	b := NewBreaker("test_op", cfg)
	clock := &fakeClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	b.now = clock.now
	return b, clock
}

func TestBreaker_StaysClosedBelowMinRequests(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{FailureRatio: 0.5, MinRequests: 3})

	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Allow())
}

func TestBreaker_TripsAtFailureRatio(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{FailureRatio: 0.5, MinRequests: 3})

	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure() // 2 failures / 3 total >= 0.5
	assert.Equal(t, StateOpen, b.State())

	err := b.Allow()
	var openErr *CircuitOpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, "test_op", openErr.Operation)
}

func TestBreaker_SuccessesKeepItClosed(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{FailureRatio: 0.5, MinRequests: 3})

	for i := 0; i < 10; i++ {
		b.RecordSuccess()
	}
	b.RecordFailure() // 1/11 < 0.5
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_WindowRollDropsStaleOutcomes(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{FailureRatio: 0.5, MinRequests: 3, Window: 10 * time.Second})

	b.RecordFailure()
	b.RecordFailure()

	// The window elapses; old failures no longer count.
	clock.advance(11 * time.Second)
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenSingleTrial(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{
		FailureRatio: 0.5,
		MinRequests:  1,
		OpenTimeout:  30 * time.Second,
	})

	b.RecordFailure()
	require.Equal(t, StateOpen, b.State())

	// Still inside the open timeout.
	assert.Error(t, b.Allow())

	clock.advance(30 * time.Second)

	// One trial admitted, concurrent callers rejected until its outcome.
	assert.NoError(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
	assert.Error(t, b.Allow())
}

func TestBreaker_HalfOpenSuccessCloses(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{FailureRatio: 0.5, MinRequests: 1, OpenTimeout: time.Second})

	b.RecordFailure()
	clock.advance(time.Second)
	require.NoError(t, b.Allow())

	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.State())

	// Counters are clean after a close; one failure does not re-trip even
	// with MinRequests 1 at ratio 1.0.
	b2, clock2 := newTestBreaker(BreakerConfig{FailureRatio: 1.0, MinRequests: 2, OpenTimeout: time.Second})
	b2.RecordFailure()
	b2.RecordFailure()
	require.Equal(t, StateOpen, b2.State())
	clock2.advance(time.Second)
	require.NoError(t, b2.Allow())
	b2.RecordSuccess()
	b2.RecordFailure()
	assert.Equal(t, StateClosed, b2.State())
}

func TestBreaker_StaleSuccessDoesNotCloseOpenBreaker(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{FailureRatio: 0.5, MinRequests: 1, OpenTimeout: 30 * time.Second})

	// A call admitted while closed is still in flight when failures trip
	// the breaker; its late success must not short-circuit the open period.
	require.NoError(t, b.Allow())
	b.RecordFailure()
	require.Equal(t, StateOpen, b.State())

	b.RecordSuccess()
	assert.Equal(t, StateOpen, b.State())
	assert.Error(t, b.Allow())

	clock.advance(30 * time.Second)
	assert.NoError(t, b.Allow())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{FailureRatio: 0.5, MinRequests: 1, OpenTimeout: time.Second})

	b.RecordFailure()
	clock.advance(time.Second)
	require.NoError(t, b.Allow())

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())

	// The fresh open period starts now, not at the original trip.
	assert.Error(t, b.Allow())
	clock.advance(time.Second)
	assert.NoError(t, b.Allow())
}

func TestBreaker_OnStateChangeObservesTransitions(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{FailureRatio: 0.5, MinRequests: 1, OpenTimeout: time.Second})

	type transition struct{ from, to State }
	var seen []transition
	b.OnStateChange = func(op string, from, to State) {
		assert.Equal(t, "test_op", op)
		seen = append(seen, transition{from, to})
	}

	b.RecordFailure()
	clock.advance(time.Second)
	require.NoError(t, b.Allow())
	b.RecordSuccess()

	assert.Equal(t, []transition{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}, seen)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}
