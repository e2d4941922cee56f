// Package cache provides the Redis access layer.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pool sizing. History reads are small and short-lived, so a modest pool
// covers the request concurrency the HTTP server allows.
const (
	poolSize        = 10
	minIdleConns    = 2
	poolTimeout     = 4 * time.Second
	connMaxIdleTime = 5 * time.Minute
)

// Cache owns the Redis client behind the history cache. The redis event
// stream borrows the same client through Client.
type Cache struct {
	client *redis.Client
}

// New parses redisURL, sizes the pool and pings once. The client is closed
// again if the ping fails.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.PoolSize = poolSize
	opt.MinIdleConns = minIdleConns
	opt.PoolTimeout = poolTimeout
	opt.ConnMaxIdleTime = connMaxIdleTime

	c := NewFromClient(redis.NewClient(opt))
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return c, nil
}

// NewFromClient wraps an existing client. Close closes it.
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping implements the readiness check.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the client for the event stream and test cleanup.
func (c *Cache) Client() *redis.Client {
	return c.client
}
