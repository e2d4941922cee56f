package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murmur/murmur/internal/model"
)

func unreachable(t *testing.T) *Cache {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewFromClient(client)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestHistoryKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "history:01HUSER", historyKey("01HUSER"))
}

func TestHistory_RedisDown(t *testing.T) {
	t.Parallel()

	c := unreachable(t)
	ctx := context.Background()

	_, err := c.GetHistory(ctx, "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss, "connection errors are not misses")

	assert.Error(t, c.SetHistory(ctx, "u1", []*model.Transcription{{ID: "t1"}}, time.Minute))
	assert.Error(t, c.InvalidateHistory(ctx, "u1"))
	assert.Error(t, c.Ping(ctx))
}

func TestNew_BadURL(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), "not-a-url")
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

func TestNew_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, "redis://127.0.0.1:1/0?dial_timeout=50ms&max_retries=-1")
	assert.ErrorContains(t, err, "failed to ping Redis")
}
