package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions configures a RedisStore. Blobs never expire.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	MaxWait  time.Duration
}

// RedisStore keeps blobs as plain Redis strings under an optional key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis, retrying the initial ping with exponential backoff.
func NewRedisStore(ctx context.Context, opts RedisOptions, logger *zap.Logger) (*RedisStore, error) {
	const operation = "store.NewRedisStore"

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = opts.MaxWait
	retryPolicy.MaxInterval = 5 * time.Second

	err := backoff.RetryNotify(
		func() error {
			return client.Ping(ctx).Err()
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, next time.Duration) {
			logger.Warn("redis ping failed, retrying",
				zap.String("addr", opts.Addr),
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: connect after retries: %w", operation, err)
	}

	logger.Info("redis connected", zap.String("addr", opts.Addr))
	return &RedisStore{client: client, prefix: opts.Prefix}, nil
}

// NewRedisStoreFromClient wraps an existing client without checking connectivity.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %q: %w", key, err)
	}
	return data, nil
}

// Put stores value under key without expiry.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set blob %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
