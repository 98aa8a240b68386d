package sessions

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

// InMemoryStore is a threadsafe Repo for tests and single-process
// development. Expired entries are dropped lazily on read.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	nowFunc func() time.Time
}

// InMemoryOption modifies an InMemoryStore.
type InMemoryOption func(*InMemoryStore)

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(now func() time.Time) InMemoryOption {
	return func(s *InMemoryStore) {
		s.nowFunc = now
	}
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore(options ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		entries: make(map[string]memoryEntry),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

var _ Repo = (*InMemoryStore)(nil)

// Put implements Repo.
func (s *InMemoryStore) Put(_ context.Context, loginID string, rec *Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[loginID] = memoryEntry{
		rec:       *rec,
		expiresAt: s.nowFunc().Add(ttl),
	}
	return nil
}

// Get implements Repo.
func (s *InMemoryStore) Get(_ context.Context, loginID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[loginID]
	if !ok {
		return nil, nil
	}
	if !s.nowFunc().Before(entry.expiresAt) {
		delete(s.entries, loginID)
		return nil, nil
	}
	cp := entry.rec
	return &cp, nil
}

// Delete implements Repo.
func (s *InMemoryStore) Delete(_ context.Context, loginID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, loginID)
	return nil
}
