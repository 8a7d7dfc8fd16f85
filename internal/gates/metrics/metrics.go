package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for feature gates.
type Metrics struct {
	// Gate decisions by feature and outcome (allowed, denied, bypassed)
	Decisions *prometheus.CounterVec
}

// New creates gate metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "notaryfix_gate_decisions_total",
			Help: "Total feature gate decisions by feature and outcome",
		}, []string{"feature", "outcome"}),
	}
}

// IncrementDecision records one gate decision.
func (m *Metrics) IncrementDecision(feature, outcome string) {
	if m != nil {
		m.Decisions.WithLabelValues(feature, outcome).Inc()
	}
}
