// Package memstore provides in-memory stand-ins for the store and the
// transcription gateway, for tests that exercise the HTTP surface.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/murmur/murmur/internal/model"
	"github.com/murmur/murmur/internal/repository"
	"github.com/murmur/murmur/internal/transcribe"
)

// Store is an in-memory user and transcription store with the same
// error and ordering contract as repository.Repository.
type Store struct {
	mu             sync.Mutex
	users          map[string]*model.User
	transcriptions []*model.Transcription
	clock          time.Time
}

// New returns an empty store whose clock starts at 2026-01-01 UTC
// and advances one second per insert.
func New() *Store {
	return &Store{
		users: map[string]*model.User{},
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *Store) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// CreateUser stores u or returns repository.ErrEmailExists.
func (m *Store) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return repository.ErrEmailExists
	}
	u.CreatedAt = m.tick()
	clone := *u
	m.users[u.Email] = &clone
	return nil
}

// GetUserByEmail returns a copy of the user or repository.ErrUserNotFound.
func (m *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

// CreateTranscription appends t, assigning CreatedAt.
func (m *Store) CreateTranscription(_ context.Context, t *model.Transcription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.CreatedAt = m.tick()
	clone := *t
	m.transcriptions = append(m.transcriptions, &clone)
	return nil
}

// ListTranscriptionsByUser returns copies, newest first with ties broken by
// id descending. Never nil.
func (m *Store) ListTranscriptionsByUser(_ context.Context, userID string) ([]*model.Transcription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Transcription{}
	for _, t := range m.transcriptions {
		if t.UserID == userID {
			clone := *t
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Transcriber returns Text for every call and counts them.
type Transcriber struct {
	mu    sync.Mutex
	Text  string
	Err   error
	calls int
}

// Transcribe implements transcribe.Transcriber.
func (s *Transcriber) Transcribe(context.Context, *transcribe.Spool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.Text, s.Err
}

// Calls returns how many times Transcribe ran.
func (s *Transcriber) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
