// Package cache provides the Redis-backed authentication cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides Redis cache access methods.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// Option tunes a Cache created by New.
type Option func(*options)

type options struct {
	poolSize int
	ttl      time.Duration
}

// WithPoolSize sets the maximum number of Redis connections.
func WithPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

// WithTTL sets how long a verified auth context stays cached.
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, redisURL string, opts ...Option) (*Cache, error) {
	o := options{poolSize: 10, ttl: authCacheTTL}
	for _, opt := range opts {
		opt(&o)
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.PoolSize = o.poolSize
	redisOpts.MinIdleConns = 1
	redisOpts.PoolTimeout = 4 * time.Second
	redisOpts.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client, ttl: o.ttl}, nil
}

// NewWithClient wraps an existing client with the default TTL.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: authCacheTTL}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client for test setup.
func (c *Cache) Client() *redis.Client {
	return c.client
}
