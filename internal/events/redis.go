package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/murmur/murmur/internal/model"
)

const (
	// StreamKey is the Redis stream for transcription events.
	StreamKey = "stream:transcription_events"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000
)

// RedisStream appends events to a Redis stream with XADD.
// The client is shared with the cache and is not closed here.
type RedisStream struct {
	client *redis.Client
	stream string
}

// NewRedisStream creates a stream publisher. An empty stream uses StreamKey.
func NewRedisStream(client *redis.Client, stream string) *RedisStream {
	if stream == "" {
		stream = StreamKey
	}
	return &RedisStream{client: client, stream: stream}
}

// Publish adds the event under the "payload" field.
func (p *RedisStream) Publish(ctx context.Context, event model.TranscriptionCreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]any{
			"type":    "transcription.created",
			"payload": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

// Close is a no-op; the owner of the Redis client closes it.
func (p *RedisStream) Close() error { return nil }
