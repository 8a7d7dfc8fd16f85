package store

import (
	"context"
	"sync"
	"time"

	"notaryfix/internal/ratelimit/models"
)

// InMemoryStore implements a sliding window per key. It is not shared
// between replicas; use RedisStore when running more than one.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	stamps []time.Time
	window time.Duration
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{windows: make(map[string]*slidingWindow), now: time.Now}
}

// Allow records one request for key when it fits within limit.
func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sw, ok := s.windows[key]
	if !ok {
		sw = &slidingWindow{}
	}
	sw.window = window
	sw.stamps = prune(sw.stamps, now.Add(-window))
	if len(sw.stamps) >= limit {
		if len(sw.stamps) == 0 {
			delete(s.windows, key)
			return &models.Result{Limit: limit, ResetAt: now.Add(window)}, nil
		}
		s.windows[key] = sw
		return &models.Result{Limit: limit, ResetAt: sw.stamps[0].Add(window)}, nil
	}

	sw.stamps = append(sw.stamps, now)
	s.windows[key] = sw
	return &models.Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(sw.stamps),
		ResetAt:   sw.stamps[0].Add(window),
	}, nil
}

// Reset forgets every request recorded for key.
func (s *InMemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

// Len reports how many keys are tracked.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// StartCleanup drops expired keys every interval until ctx is cancelled.
func (s *InMemoryStore) StartCleanup(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RemoveExpiredAt(s.now())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RemoveExpiredAt deletes keys with no request inside their window as of now.
// Exported for testability; background cleanup passes the store clock.
func (s *InMemoryStore) RemoveExpiredAt(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, sw := range s.windows {
		sw.stamps = prune(sw.stamps, now.Add(-sw.window))
		if len(sw.stamps) == 0 {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// prune drops timestamps at or before cutoff.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	if i == len(stamps) {
		return nil
	}
	return stamps[i:]
}
