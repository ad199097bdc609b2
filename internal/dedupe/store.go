// Package dedupe suppresses repeat deliveries for order events that arrive
// more than once, using Redis SET NX with a TTL as the seen-marker.
package dedupe

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"sms-notifier/internal/common/errors"
	"sms-notifier/internal/common/logger"
)

const keyPrefix = "sms-notifier:seen:"

// Store records which dedupe keys have already been processed.
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    logger.Logger
}

// Config holds Redis connection settings for the dedupe store.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg Config, log logger.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return NewWithClient(client, cfg.TTL, log), nil
}

// NewWithClient wraps an existing client; used by tests with miniredis.
func NewWithClient(client redis.UniversalClient, ttl time.Duration, log logger.Logger) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl, log: log}
}

// MarkIfNew atomically records the key and reports whether it was unseen.
// A false return means the key was already marked and the caller should skip
// delivery. Redis failures surface as a retryable DEDUPE_UNAVAILABLE error so
// the caller can decide between failing open and retrying.
func (s *Store) MarkIfNew(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, 1, s.ttl).Result()
	if err != nil {
		s.log.WithError(err).Warn("dedupe store unavailable", map[string]interface{}{
			"key": key,
		})
		return false, errors.NewDedupeUnavailableError(err)
	}
	return ok, nil
}

// Unmark deletes the key so a later redelivery is treated as new again.
// Used when a document was marked but its delivery never completed.
func (s *Store) Unmark(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		s.log.WithError(err).Warn("dedupe marker release failed", map[string]interface{}{
			"key": key,
		})
		return errors.NewDedupeUnavailableError(err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
