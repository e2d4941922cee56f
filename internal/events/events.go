// Package events publishes domain events to a broker.
package events

import (
	"context"

	"github.com/murmur/murmur/internal/model"
)

// Publisher delivers transcription.created events.
type Publisher interface {
	Publish(ctx context.Context, event model.TranscriptionCreatedEvent) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, model.TranscriptionCreatedEvent) error { return nil }
func (Noop) Close() error                                                    { return nil }
