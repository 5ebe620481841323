package ratelimiter

import (
	"context"
	"sync"
	"time"
)

const staleBucketAge = time.Hour

type memoryBucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore keeps buckets in process memory. Stale buckets are swept
// periodically; call Close to stop the sweeper.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
	now     func() time.Time

	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets the sweep period; zero disables sweeping.
func WithCleanupInterval(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) { s.cleanupInterval = d }
}

func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		buckets:         make(map[string]*memoryBucket),
		now:             time.Now,
		cleanupInterval: 5 * time.Minute,
		stop:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cleanupInterval > 0 {
		go s.sweep()
	}
	return s
}

func (s *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok {
		b = &memoryBucket{tokens: cfg.Capacity, lastRefill: now}
		s.buckets[key] = b
	}
	b.lastAccess = now

	// Cap elapsed intervals so huge idle gaps cannot overflow.
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := int(min(int64(now.Sub(b.lastRefill)/cfg.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = now
	}

	resetAt := b.lastRefill.Add(cfg.RefillInterval)
	if b.tokens < tokens {
		return b.tokens - tokens, resetAt, nil
	}
	b.tokens -= tokens
	return b.tokens, resetAt, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.buckets, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.removeStale()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) removeStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, b := range s.buckets {
		if now.Sub(b.lastAccess) > staleBucketAge {
			delete(s.buckets, key)
		}
	}
}
