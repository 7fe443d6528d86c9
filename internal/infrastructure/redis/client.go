package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// ClientConfig configures the Redis client used for the account cache,
// idempotency keys and the event stream.
type ClientConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	PingTimeout  time.Duration
	PingAttempts uint64
}

// NewClient creates a Redis client from a URL with default settings.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	return NewClientWithConfig(ctx, ClientConfig{URL: redisURL})
}

// NewClientWithConfig creates a client and pings it, retrying with
// exponential backoff up to PingAttempts times. Zero values keep the
// go-redis defaults and a single attempt.
func NewClientWithConfig(ctx context.Context, cfg ClientConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	attempts := cfg.PingAttempts
	if attempts == 0 {
		attempts = 1
	}

	client := redis.NewClient(opts)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	err = backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}, backoff.WithContext(backoff.WithMaxRetries(b, attempts-1), ctx))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
