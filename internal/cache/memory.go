package cache

import (
	"context"
	"sync"
	"time"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
)

type memItem struct {
	value   []byte
	expires time.Time
}

// MemoryStore is the process local Store used when redis is not configured
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memItem
	clock adapter.Clock
}

func NewMemoryStore(clock adapter.Clock) *MemoryStore {
	return &MemoryStore{items: map[string]memItem{}, clock: clock}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !it.expires.IsZero() && s.clock.Now().After(it.expires) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return clone(it.value), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	it := memItem{value: clone(value)}
	if ttl > 0 {
		it.expires = s.clock.Now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
