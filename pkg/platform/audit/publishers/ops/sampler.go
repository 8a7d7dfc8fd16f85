package ops

import (
	"math/rand/v2"
	"sync"
)

// Sampler keeps a fraction of high-volume operational events. Evaluations
// and guidance lookups run on every keystroke in some clients, so their
// audit trail is sampled rather than kept in full.
type Sampler struct {
	mu           sync.RWMutex
	defaultRate  float64
	rateByAction map[string]float64
	draw         func() float64
}

// NewSampler creates a sampler with the given default rate and per-action
// overrides. Rates are clamped to [0, 1].
func NewSampler(defaultRate float64, overrides map[string]float64) *Sampler {
	s := &Sampler{
		defaultRate:  clampRate(defaultRate),
		rateByAction: make(map[string]float64, len(overrides)),
		draw:         rand.Float64, //nolint:gosec // sampling doesn't need crypto rand
	}
	for action, rate := range overrides {
		s.rateByAction[action] = clampRate(rate)
	}
	return s
}

// ShouldSample reports whether an event with action should be kept.
func (s *Sampler) ShouldSample(action string) bool {
	rate := s.rateFor(action)
	switch rate {
	case 0:
		return false
	case 1:
		return true
	}
	return s.draw() < rate
}

// SetRate overrides the rate for one action.
func (s *Sampler) SetRate(action string, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateByAction[action] = clampRate(rate)
}

func (s *Sampler) rateFor(action string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rate, ok := s.rateByAction[action]; ok {
		return rate
	}
	return s.defaultRate
}

func clampRate(rate float64) float64 {
	return min(max(rate, 0), 1)
}
