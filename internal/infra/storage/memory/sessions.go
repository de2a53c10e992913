package memory

import (
	"context"
	"sync"
	"time"

	"rentbook/internal/app/handlers/selection"
)

type sessionEntry struct {
	mu      sync.Mutex
	session *selection.Session
	gone    bool
}

// SessionStore holds picker sessions. Each session has its own lock so taps
// on different sessions never contend.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

func NewSessionStore() *SessionStore {
	return &SessionStore{entries: make(map[string]*sessionEntry)}
}

func (s *SessionStore) Create(ctx context.Context, session *selection.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ID] = &sessionEntry{session: session}
	return nil
}

func (s *SessionStore) Update(ctx context.Context, id string, fn func(*selection.Session) error) error {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return selection.ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.gone {
		return selection.ErrSessionNotFound
	}
	return fn(entry.session)
}

func (s *SessionStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	entry.mu.Lock()
	entry.gone = true
	entry.mu.Unlock()
	return true, nil
}

func (s *SessionStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.entries {
		entry.mu.Lock()
		if entry.session.Expired(now) {
			entry.gone = true
			delete(s.entries, id)
			removed++
		}
		entry.mu.Unlock()
	}
	return removed, nil
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ selection.Store = (*SessionStore)(nil)
