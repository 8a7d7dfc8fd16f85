package ops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, time.Minute)
	cb.now = func() time.Time { return now }

	assert.True(t, cb.Allow())
	cb.RecordFailure()
	assert.False(t, cb.IsOpen(), "one failure stays closed")
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
	assert.False(t, cb.Allow(), "open circuit rejects during cooldown")

	now = now.Add(61 * time.Second)
	assert.True(t, cb.Allow(), "half-open lets one write through")
	cb.RecordFailure()
	assert.True(t, cb.IsOpen(), "a failed trial call reopens immediately")

	now = now.Add(2 * time.Minute)
	assert.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.False(t, cb.IsOpen())
}

func TestSampler(t *testing.T) {
	s := NewSampler(0.5, map[string]float64{"keep": 1, "drop": 0, "over": 7})

	assert.True(t, s.ShouldSample("keep"))
	assert.False(t, s.ShouldSample("drop"))
	assert.True(t, s.ShouldSample("over"), "rates clamp to 1")

	s.draw = func() float64 { return 0.49 }
	assert.True(t, s.ShouldSample("other"))
	s.draw = func() float64 { return 0.5 }
	assert.False(t, s.ShouldSample("other"))

	s.SetRate("other", -1)
	assert.False(t, s.ShouldSample("other"))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncTracked()
		m.IncSampled()
		m.IncDropped()
		m.IncCircuitBreakerDropped()
		m.IncPersistFailures()
		m.SetCircuitBreakerState(true)
	})
}
