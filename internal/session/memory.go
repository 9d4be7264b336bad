package session

import (
	"context"
	"sync"
	"time"

	"family-calendar/internal/models"
)

type memoryEntry struct {
	sess      models.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. It is the default store:
// one household, one process, nothing to share. Expired entries are
// dropped lazily on read.
type MemoryStore struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl: ttl,
		m:   make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	entry, ok := s.m[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.m, id)
		s.mu.Unlock()
		return nil, nil
	}
	sess := entry.sess
	return &sess, nil
}

func (s *MemoryStore) Set(ctx context.Context, id string, sess *models.Session) error {
	s.mu.Lock()
	s.m[id] = memoryEntry{sess: *sess, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()
	return nil
}
