package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks dataset reloads.
type Metrics struct {
	// Reloads by source and outcome (success, failure)
	Reloads *prometheus.CounterVec

	// Records in the installed snapshot by kind
	Records *prometheus.GaugeVec

	// Records dropped by sanitization, by kind
	Skipped *prometheus.CounterVec

	ReloadDuration prometheus.Histogram

	// Unix time of the last successful reload
	LastSuccess prometheus.Gauge
}

// New registers the metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Reloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notaryfix_dataset_reloads_total",
			Help: "Total dataset reload attempts by source and outcome",
		}, []string{"source", "outcome"}),
		Records: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "notaryfix_dataset_records",
			Help: "Records in the active dataset snapshot by kind",
		}, []string{"kind"}),
		Skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notaryfix_dataset_records_skipped_total",
			Help: "Dataset records dropped during validation by kind",
		}, []string{"kind"}),
		ReloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "notaryfix_dataset_reload_duration_seconds",
			Help:    "Duration of dataset loads including validation",
			Buckets: prometheus.DefBuckets,
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "notaryfix_dataset_last_success_timestamp_seconds",
			Help: "Unix time of the last successful dataset reload",
		}),
	}
}

// ObserveReload records one reload attempt.
func (m *Metrics) ObserveReload(source string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.Reloads.WithLabelValues(source, outcome).Inc()
	m.ReloadDuration.Observe(d.Seconds())
}

// SetRecords publishes the installed snapshot's size.
func (m *Metrics) SetRecords(rules, fees, ids int, at time.Time) {
	if m == nil {
		return
	}
	m.Records.WithLabelValues("state_rules").Set(float64(rules))
	m.Records.WithLabelValues("fee_schedules").Set(float64(fees))
	m.Records.WithLabelValues("id_requirements").Set(float64(ids))
	m.LastSuccess.Set(float64(at.Unix()))
}

// IncrementSkipped records one dropped record.
func (m *Metrics) IncrementSkipped(kind string) {
	if m != nil {
		m.Skipped.WithLabelValues(kind).Inc()
	}
}
