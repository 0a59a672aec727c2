// internal/agent/session/memory.go
package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with per-entry expiry. Suitable for
// tests and single-instance deployments without Redis.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	pc       PendingContext
	deadline time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*PendingContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionID]
	if !ok {
		return nil, nil
	}
	if s.now().After(e.deadline) {
		delete(s.entries, sessionID)
		return nil, nil
	}
	pc := e.pc
	return &pc, nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, pc PendingContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = memoryEntry{pc: pc, deadline: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
