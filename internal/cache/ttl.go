package cache

import (
	"context"
	"sync"
	"time"

	"github.com/smallbiznis/storeledger/internal/clock"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// TTLStore is an in-process Store. Expired entries are dropped on read.
type TTLStore struct {
	clock clock.Clock

	mu      sync.RWMutex
	entries map[string]entry
}

func NewTTLStore(c clock.Clock) *TTLStore {
	if c == nil {
		c = clock.SystemClock{}
	}
	return &TTLStore{clock: c, entries: make(map[string]entry)}
}

func (s *TTLStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !s.clock.Now().Before(e.expiresAt) {
		s.mu.Lock()
		if current, still := s.entries[key]; still && current.expiresAt.Equal(e.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *TTLStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	s.mu.Lock()
	s.entries[key] = entry{value: buf, expiresAt: s.clock.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *TTLStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	s.mu.Unlock()
	return nil
}
