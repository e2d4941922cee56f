package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/murmur/murmur/internal/archive"
	"github.com/murmur/murmur/internal/cache"
	"github.com/murmur/murmur/internal/events"
	"github.com/murmur/murmur/internal/metrics"
	"github.com/murmur/murmur/internal/model"
	"github.com/murmur/murmur/internal/transcribe"
)

const (
	// DefaultTranscriptionTimeout bounds the upstream call.
	DefaultTranscriptionTimeout = 2 * time.Minute

	// sideEffectTimeout bounds the archive upload and event publish.
	sideEffectTimeout = 10 * time.Second
)

// TranscriptionStore is the history store.
type TranscriptionStore interface {
	CreateTranscription(ctx context.Context, t *model.Transcription) error
	ListTranscriptionsByUser(ctx context.Context, userID string) ([]*model.Transcription, error)
}

// HistoryCache caches history lists per user.
type HistoryCache interface {
	GetHistory(ctx context.Context, userID string) ([]*model.Transcription, error)
	SetHistory(ctx context.Context, userID string, items []*model.Transcription, ttl time.Duration) error
	InvalidateHistory(ctx context.Context, userID string) error
}

// TranscriptionDeps wires a TranscriptionService. Store and Gateway are
// required; the rest fall back to no-ops when nil.
type TranscriptionDeps struct {
	Store     TranscriptionStore
	Gateway   transcribe.Transcriber
	Cache     HistoryCache
	Archive   archive.Store
	Publisher events.Publisher
	Metrics   metrics.Recorder
	Logger    *slog.Logger

	Timeout  time.Duration
	CacheTTL time.Duration
}

// TranscriptionService turns uploads into stored text and serves history.
type TranscriptionService struct {
	store     TranscriptionStore
	gateway   transcribe.Transcriber
	cache     HistoryCache
	archive   archive.Store
	publisher events.Publisher
	metrics   metrics.Recorder
	logger    *slog.Logger
	timeout   time.Duration
	cacheTTL  time.Duration
	newID     func() string
}

// NewTranscriptionService creates a new TranscriptionService.
func NewTranscriptionService(deps TranscriptionDeps) *TranscriptionService {
	s := &TranscriptionService{
		store:     deps.Store,
		gateway:   deps.Gateway,
		cache:     deps.Cache,
		archive:   deps.Archive,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		timeout:   deps.Timeout,
		cacheTTL:  deps.CacheTTL,
		newID:     newID,
	}
	if s.archive == nil {
		s.archive = archive.Noop{}
	}
	if s.publisher == nil {
		s.publisher = events.Noop{}
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNoop()
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTranscriptionTimeout
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = cache.DefaultHistoryTTL
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s.logger = logger.With("component", "service.transcription")

	return s
}

// Transcribe sends audio upstream, stores the text for userID and returns
// the record. The caller owns audio and closes it afterwards.
func (s *TranscriptionService) Transcribe(ctx context.Context, userID string, audio *transcribe.Spool) (*model.Transcription, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	text, err := s.callGateway(ctx, audio)
	if err != nil {
		return nil, err
	}

	record := &model.Transcription{
		ID:     s.newID(),
		UserID: userID,
		Text:   text,
	}
	if err := s.store.CreateTranscription(ctx, record); err != nil {
		return nil, fmt.Errorf("store transcription: %w", err)
	}

	s.metrics.IncTranscription(metrics.StatusSuccess)

	// The response no longer depends on ctx past this point.
	bg := context.WithoutCancel(ctx)
	s.archiveAudio(bg, record, audio)
	s.invalidate(bg, userID)
	s.publish(bg, record)

	return record, nil
}

func (s *TranscriptionService) callGateway(ctx context.Context, audio *transcribe.Spool) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.gateway.Transcribe(callCtx, audio)
	s.metrics.ObserveTranscriptionDuration(time.Since(start))

	if err == nil {
		return text, nil
	}

	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, transcribe.ErrTimeout) {
		err = fmt.Errorf("%w: %v", transcribe.ErrTimeout, err)
	}
	if errors.Is(err, transcribe.ErrTimeout) {
		s.metrics.IncTranscription(metrics.StatusTimeout)
	} else {
		s.metrics.IncTranscription(metrics.StatusFailed)
	}
	return "", fmt.Errorf("transcribe audio: %w", err)
}

func (s *TranscriptionService) archiveAudio(ctx context.Context, record *model.Transcription, audio *transcribe.Spool) {
	if _, ok := s.archive.(archive.Noop); ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()

	key := archive.Key(record.UserID, record.ID, audio.Ext(), record.CreatedAt)

	err := func() error {
		f, err := audio.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		return s.archive.Put(ctx, key, f, audio.Size())
	}()
	if err != nil {
		s.logger.Warn("failed to archive audio",
			"transcription_id", record.ID,
			"key", key,
			"error", err,
		)
		s.metrics.IncAudioArchived(metrics.StatusFailed)
		return
	}
	s.metrics.IncAudioArchived(metrics.StatusSuccess)
}

func (s *TranscriptionService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateHistory(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate history cache", "user_id", userID, "error", err)
	}
}

func (s *TranscriptionService) publish(ctx context.Context, record *model.Transcription) {
	ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, record.Event()); err != nil {
		s.logger.Warn("failed to publish transcription event",
			"transcription_id", record.ID,
			"error", err,
		)
		s.metrics.IncEventPublished(metrics.StatusDropped)
		return
	}
	s.metrics.IncEventPublished(metrics.StatusSuccess)
}

// History returns every transcription of userID, newest first. The result
// is never nil.
func (s *TranscriptionService) History(ctx context.Context, userID string) ([]*model.Transcription, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	if s.cache != nil {
		items, err := s.cache.GetHistory(ctx, userID)
		switch {
		case err == nil:
			s.metrics.IncHistoryCacheHit()
			return items, nil
		case errors.Is(err, cache.ErrCacheMiss):
			s.metrics.IncHistoryCacheMiss()
		default:
			s.metrics.IncHistoryCacheMiss()
			s.logger.Warn("history cache read failed", "user_id", userID, "error", err)
		}
	}

	items, err := s.store.ListTranscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}
	if items == nil {
		items = []*model.Transcription{}
	}

	if s.cache != nil {
		if err := s.cache.SetHistory(ctx, userID, items, s.cacheTTL); err != nil {
			s.logger.Warn("history cache write failed", "user_id", userID, "error", err)
		}
	}

	return items, nil
}
