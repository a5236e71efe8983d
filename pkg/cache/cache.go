package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is an advisory in-process TTL cache. Expired entries are deleted
// lazily on read, there is no background sweep. A miss just means the caller
// recomputes, so losing entries is always safe.
type Store struct {
	mu    sync.Mutex
	items map[string]entry
	clock func() time.Time
}

func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock exists so tests can drive expiry with a fake clock.
func NewWithClock(clock func() time.Time) *Store {
	return &Store{
		items: make(map[string]entry),
		clock: clock,
	}
}

func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = entry{value: value, expiresAt: s.clock().Add(ttl)}
}

func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.items[key]
	if !ok {
		return nil, false
	}
	if s.clock().After(ent.expiresAt) {
		delete(s.items, key)
		return nil, false
	}
	return ent.value, true
}
