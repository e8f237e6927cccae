// Package memory keeps session scoped values in process memory with a TTL.
package memory

import (
	"context"
	"sync"
	"time"
)

type item struct {
	value     string
	expiresAt time.Time
}

// Store is an in-memory session store. Values expire ttl after their last Put.
type Store struct {
	mu       sync.Mutex
	sessions map[string]map[string]item
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]map[string]item),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Store) Put(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.sessions[sessionID]
	if !ok {
		items = make(map[string]item)
		s.sessions[sessionID] = items
	}

	items[key] = item{value: value, expiresAt: s.now().Add(s.ttl)}

	return nil
}

// Take returns the value and deletes it while holding the lock, so concurrent
// callers observe it at most once.
func (s *Store) Take(_ context.Context, sessionID, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.sessions[sessionID]
	if !ok {
		return "", false, nil
	}

	it, ok := items[key]
	if !ok {
		return "", false, nil
	}

	delete(items, key)
	if len(items) == 0 {
		delete(s.sessions, sessionID)
	}

	if !s.now().Before(it.expiresAt) {
		return "", false, nil
	}

	return it.value, true, nil
}

// Sweep drops expired values and returns how many were removed.
func (s *Store) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0

	for sessionID, items := range s.sessions {
		for key, it := range items {
			if !now.Before(it.expiresAt) {
				delete(items, key)
				removed++
			}
		}
		if len(items) == 0 {
			delete(s.sessions, sessionID)
		}
	}

	return removed, nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}
