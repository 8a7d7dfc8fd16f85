package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCallerLabel(t *testing.T) {
	tests := []struct {
		caller string
		want   string
	}{
		{caller: "advisor", want: "advisor"},
		{caller: " Form-Guide ", want: "form-guide"},
		{caller: "arrive", want: "arrive"},
		{caller: "", want: "unknown"},
		{caller: "my-script-42", want: "other"},
	}
	for _, tt := range tests {
		t.Run(tt.caller, func(t *testing.T) {
			assert.Equal(t, tt.want, CallerLabel(tt.caller))
		})
	}
}

func TestIncrementEvaluationBoundsSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg)

	for i := range 500 {
		m.IncrementEvaluation(fmt.Sprintf("caller-%d", i), false)
	}
	m.IncrementEvaluation("advisor", true)

	assert.Equal(t, 2, testutil.CollectAndCount(m.Evaluations))
	assert.InDelta(t, 500, testutil.ToFloat64(m.Evaluations.WithLabelValues("other", "false")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Evaluations.WithLabelValues("advisor", "true")), 0)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementEvaluation("advisor", true)
		m.IncrementFinding("thumbprint", "critical")
		m.IncrementSessionAdvisory()
	})
}
