package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/murmur/murmur/internal/model"
)

const (
	historyKeyPrefix = "history:"

	// DefaultHistoryTTL is the TTL for a cached history list.
	DefaultHistoryTTL = 5 * time.Minute
)

// ErrCacheMiss is returned when no entry exists for the key.
var ErrCacheMiss = errors.New("cache miss")

func historyKey(userID string) string {
	return historyKeyPrefix + userID
}

// GetHistory returns the cached history list of userID.
// Returns ErrCacheMiss if not cached.
func (c *Cache) GetHistory(ctx context.Context, userID string) ([]*model.Transcription, error) {
	data, err := c.client.Get(ctx, historyKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	items := []*model.Transcription{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cached history: %w", err)
	}
	return items, nil
}

// SetHistory caches items for userID. A non-positive ttl uses DefaultHistoryTTL.
func (c *Cache) SetHistory(ctx context.Context, userID string, items []*model.Transcription, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultHistoryTTL
	}
	if items == nil {
		items = []*model.Transcription{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := c.client.Set(ctx, historyKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache history: %w", err)
	}
	return nil
}

// InvalidateHistory removes the cached list of userID.
func (c *Cache) InvalidateHistory(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, historyKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate history: %w", err)
	}
	return nil
}
