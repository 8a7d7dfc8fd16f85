package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 3
	testWindow = time.Minute
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	clock time.Time
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.clock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemoryStore()
	s.store.now = func() time.Time { return s.clock }
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestAllow() {
	s.Run("counts down to the limit", func() {
		for i := range testLimit {
			result, err := s.store.Allow(s.ctx, "ip:a", testLimit, testWindow)
			s.Require().NoError(err)
			s.True(result.Allowed)
			s.Equal(testLimit-1-i, result.Remaining)
			s.Equal(s.clock.Add(testWindow), result.ResetAt)
		}
	})

	s.Run("over the limit is denied", func() {
		result, err := s.store.Allow(s.ctx, "ip:a", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(0, result.Remaining)
	})

	s.Run("keys are independent", func() {
		result, err := s.store.Allow(s.ctx, "ip:b", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
	})

	s.Run("window slides", func() {
		s.clock = s.clock.Add(testWindow + time.Second)
		result, err := s.store.Allow(s.ctx, "ip:a", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit-1, result.Remaining)
	})
}

func (s *InMemoryStoreSuite) TestReset() {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "ip:c", testLimit, testWindow)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.Reset(s.ctx, "ip:c"))

	result, err := s.store.Allow(s.ctx, "ip:c", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *InMemoryStoreSuite) TestConcurrentAllow() {
	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(s.ctx, "ip:d", testLimit, testWindow)
			if err == nil && result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}

func (s *InMemoryStoreSuite) TestRemoveExpiredAt() {
	for i := range 100 {
		_, err := s.store.Allow(s.ctx, fmt.Sprintf("ip:10.0.0.%d", i), testLimit, testWindow)
		s.Require().NoError(err)
	}
	s.clock = s.clock.Add(testWindow / 2)
	_, err := s.store.Allow(s.ctx, "ip:late", testLimit, testWindow)
	s.Require().NoError(err)
	s.Require().Equal(101, s.store.Len())

	s.Run("keys inside their window survive", func() {
		s.Equal(0, s.store.RemoveExpiredAt(s.clock))
		s.Equal(101, s.store.Len())
	})

	s.Run("expired keys are dropped", func() {
		s.clock = s.clock.Add(testWindow / 2)
		s.Equal(100, s.store.RemoveExpiredAt(s.clock))
		s.Equal(1, s.store.Len())
	})

	s.Run("an hour later nothing is retained", func() {
		s.clock = s.clock.Add(time.Hour)
		s.Equal(1, s.store.RemoveExpiredAt(s.clock))
		s.Equal(0, s.store.Len())
	})
}

func (s *InMemoryStoreSuite) TestZeroLimitKeepsNoKey() {
	result, err := s.store.Allow(s.ctx, "ip:z", 0, testWindow)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(0, s.store.Len())
}

func (s *InMemoryStoreSuite) TestStartCleanup() {
	_, err := s.store.Allow(s.ctx, "ip:e", testLimit, testWindow)
	s.Require().NoError(err)
	s.clock = s.clock.Add(2 * testWindow)

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- s.store.StartCleanup(ctx, time.Millisecond) }()

	s.Eventually(func() bool { return s.store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	s.ErrorIs(<-done, context.Canceled)
}
