package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowCounter struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps fixed window counters in process memory. Suitable for a
// single instance; multi-instance deployments should share a RedisStore.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	now      func() time.Time
}

type MemoryStoreOption func(*MemoryStore)

// WithMemoryClock overrides the wall clock, used by tests to cross windows
// without sleeping
func WithMemoryClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		counters: map[string]*windowCounter{},
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	counter, ok := s.counters[key]
	if !ok || !counter.resetAt.After(now) {
		counter = &windowCounter{resetAt: now.Add(window)}
		s.counters[key] = counter
	}

	counter.count++

	// Expired counters for other keys pile up otherwise.
	if len(s.counters) > 1024 {
		s.sweep(now)
	}

	return counter.count, counter.resetAt.Sub(now), nil
}

func (s *MemoryStore) sweep(now time.Time) {
	for key, counter := range s.counters {
		if !counter.resetAt.After(now) {
			delete(s.counters, key)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
