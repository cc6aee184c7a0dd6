package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the fallback used when Redis is not configured. Markers are
// lost on restart, which narrows but does not eliminate the redelivery guard.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

// NewMemoryStore builds an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (s *MemoryStore) Remember(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if expiry, ok := s.seen[key]; ok && now.Before(expiry) {
		return false, nil
	}

	s.seen[key] = now.Add(ttl)
	s.evictExpiredLocked(now)

	return true, nil
}

// evictExpiredLocked drops stale markers so the map does not grow unbounded.
func (s *MemoryStore) evictExpiredLocked(now time.Time) {
	if len(s.seen) < 4096 {
		return
	}
	for key, expiry := range s.seen {
		if now.After(expiry) {
			delete(s.seen, key)
		}
	}
}
