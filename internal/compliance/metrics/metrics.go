package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the compliance module.
type Metrics struct {
	// Evaluations by calling screen and whether a published rule backed them
	Evaluations *prometheus.CounterVec

	// Findings produced by check id and severity
	Findings *prometheus.CounterVec

	// Session fee heuristic advisories raised
	SessionAdvisories prometheus.Counter

	// Overall evaluation latency
	EvaluateLatency prometheus.Histogram
}

// New creates a new Metrics instance with all compliance module metrics registered.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg. Tests pass a fresh registry.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notaryfix_compliance_evaluations_total",
			Help: "Total compliance evaluations by caller and grounding",
		}, []string{"caller", "grounded"}),

		Findings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notaryfix_compliance_findings_total",
			Help: "Total findings produced by check and severity",
		}, []string{"finding", "severity"}),

		SessionAdvisories: factory.NewCounter(prometheus.CounterOpts{
			Name: "notaryfix_compliance_session_advisories_total",
			Help: "Total session fee heuristic advisories raised",
		}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "notaryfix_compliance_evaluate_duration_seconds",
			Help:    "Duration of a compliance evaluation including dataset lookups",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		}),
	}
}

// knownCallers bounds the caller label; anything else is counted as "other".
var knownCallers = map[string]struct{}{
	"advisor":    {},
	"arrive":     {},
	"form-guide": {},
	"rulectl":    {},
}

// CallerLabel maps a client-supplied caller name onto the fixed label set.
func CallerLabel(caller string) string {
	caller = strings.ToLower(strings.TrimSpace(caller))
	if caller == "" {
		return "unknown"
	}
	if _, ok := knownCallers[caller]; ok {
		return caller
	}
	return "other"
}

// IncrementEvaluation records one evaluation.
func (m *Metrics) IncrementEvaluation(caller string, grounded bool) {
	if m == nil {
		return
	}
	g := "false"
	if grounded {
		g = "true"
	}
	m.Evaluations.WithLabelValues(CallerLabel(caller), g).Inc()
}

// IncrementFinding records one finding.
func (m *Metrics) IncrementFinding(finding, severity string) {
	if m != nil {
		m.Findings.WithLabelValues(finding, severity).Inc()
	}
}

// IncrementSessionAdvisory records a session fee advisory.
func (m *Metrics) IncrementSessionAdvisory() {
	if m != nil {
		m.SessionAdvisories.Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
