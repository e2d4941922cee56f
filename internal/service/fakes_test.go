package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/murmur/murmur/internal/cache"
	"github.com/murmur/murmur/internal/model"
	"github.com/murmur/murmur/internal/repository"
	"github.com/murmur/murmur/internal/transcribe"
)

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
	err     error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*model.User{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return repository.ErrEmailExists
	}
	u.CreatedAt = time.Now().UTC()
	clone := *u
	f.byEmail[u.Email] = &clone
	return nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(userID string) (string, error) { return "token-for-" + userID, nil }

type fakeStore struct {
	mu        sync.Mutex
	rows      []*model.Transcription
	createErr error
	listErr   error
	lists     int
	clock     time.Time
}

func (f *fakeStore) CreateTranscription(_ context.Context, t *model.Transcription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.clock.IsZero() {
		f.clock = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	f.clock = f.clock.Add(time.Second)
	t.CreatedAt = f.clock
	clone := *t
	f.rows = append(f.rows, &clone)
	return nil
}

func (f *fakeStore) ListTranscriptionsByUser(_ context.Context, userID string) ([]*model.Transcription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.Transcription
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			clone := *f.rows[i]
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeGateway struct {
	text  string
	err   error
	calls int
	seen  string
	block bool
}

func (f *fakeGateway) Transcribe(ctx context.Context, audio *transcribe.Spool) (string, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if r, err := audio.Open(); err == nil {
		data, _ := io.ReadAll(r)
		_ = r.Close()
		f.seen = string(data)
	}
	return f.text, f.err
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]*model.Transcription
	getErr      error
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]*model.Transcription{}}
}

func (f *fakeCache) GetHistory(_ context.Context, userID string) ([]*model.Transcription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	items, ok := f.entries[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return items, nil
}

func (f *fakeCache) SetHistory(_ context.Context, userID string, items []*model.Transcription, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[userID] = items
	return nil
}

func (f *fakeCache) InvalidateHistory(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, userID)
	f.invalidated = append(f.invalidated, userID)
	return nil
}

type fakeArchive struct {
	keys   []string
	bodies []string
	err    error
}

func (f *fakeArchive) Put(_ context.Context, key string, body io.ReadSeeker, _ int64) error {
	if f.err != nil {
		return f.err
	}
	data, _ := io.ReadAll(body)
	f.keys = append(f.keys, key)
	f.bodies = append(f.bodies, string(data))
	return nil
}

type fakePublisher struct {
	events []model.TranscriptionCreatedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, e model.TranscriptionCreatedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newTestSpool(t *testing.T, body string) *transcribe.Spool {
	t.Helper()
	s, err := transcribe.NewSpool(t.TempDir(), "clip.mp3", strings.NewReader(body), 1<<20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
