package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "errors"

	"sms-notifier/internal/common/errors"
	"sms-notifier/internal/common/logger"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(client, ttl, logger.NewTestLogger(t)), mr
}

func TestStore_MarkIfNew(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	fresh, err := store.MarkIfNew(ctx, "BQ123|2024-03-01T10:15:00Z")
	require.NoError(t, err)
	assert.True(t, fresh)

	// The same key again is a duplicate.
	fresh, err = store.MarkIfNew(ctx, "BQ123|2024-03-01T10:15:00Z")
	require.NoError(t, err)
	assert.False(t, fresh)

	// A different key is independent.
	fresh, err = store.MarkIfNew(ctx, "BQ124|2024-03-01T10:20:00Z")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestStore_Unmark(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	fresh, err := store.MarkIfNew(ctx, "BQ123|2024-03-01T10:15:00Z")
	require.NoError(t, err)
	require.True(t, fresh)

	require.NoError(t, store.Unmark(ctx, "BQ123|2024-03-01T10:15:00Z"))

	// A released key counts as unseen on redelivery.
	fresh, err = store.MarkIfNew(ctx, "BQ123|2024-03-01T10:15:00Z")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestStore_Unmark_RedisDown(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	mr.Close()

	err := store.Unmark(context.Background(), "BQ123")
	var std *errors.StandardError
	require.True(t, stderrors.As(err, &std))
	assert.Equal(t, errors.ErrCodeDedupeUnavailable, std.Code)
}

func TestStore_MarkIfNew_TTLExpiry(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	fresh, err := store.MarkIfNew(ctx, "BQ123")
	require.NoError(t, err)
	require.True(t, fresh)

	mr.FastForward(time.Hour + time.Minute)

	fresh, err = store.MarkIfNew(ctx, "BQ123")
	require.NoError(t, err)
	assert.True(t, fresh, "an expired marker no longer counts as seen")
}

func TestStore_MarkIfNew_RedisDown(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	mr.Close()

	_, err := store.MarkIfNew(context.Background(), "BQ123")
	require.Error(t, err)

	var std *errors.StandardError
	require.True(t, stderrors.As(err, &std))
	assert.Equal(t, errors.ErrCodeDedupeUnavailable, std.Code)
	assert.True(t, std.Retryable)
}

func TestStore_DefaultTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewWithClient(client, 0, logger.NewTestLogger(t))

	_, err := store.MarkIfNew(context.Background(), "BQ123")
	require.NoError(t, err)
	assert.Greater(t, mr.TTL("sms-notifier:seen:BQ123"), time.Duration(0))
}
