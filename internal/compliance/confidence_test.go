package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreConfidence(t *testing.T) {
	tests := []struct {
		name      string
		updated   *time.Time
		published *time.Time
		want      Confidence
	}{
		{name: "no timestamps falls back to built-in", want: Confidence{Score: 0.60, Label: ConfidenceMedium}},
		{name: "recent update", updated: daysAgo(40), want: Confidence{Score: 0.90, Label: ConfidenceHigh, FromDataset: true}},
		{name: "exactly one year", updated: daysAgo(365), want: Confidence{Score: 0.90, Label: ConfidenceHigh, FromDataset: true}},
		{name: "between one and two years", updated: daysAgo(500), want: Confidence{Score: 0.75, Label: ConfidenceMedium, FromDataset: true}},
		{name: "exactly two years", updated: daysAgo(730), want: Confidence{Score: 0.75, Label: ConfidenceMedium, FromDataset: true}},
		{name: "older than two years", updated: daysAgo(731), want: Confidence{Score: 0.60, Label: ConfidenceMedium, FromDataset: true}},
		{name: "published used when updated missing", published: daysAgo(10), want: Confidence{Score: 0.90, Label: ConfidenceHigh, FromDataset: true}},
		{name: "updated preferred over published", updated: daysAgo(900), published: daysAgo(1), want: Confidence{Score: 0.60, Label: ConfidenceMedium, FromDataset: true}},
		{name: "future timestamp counts as fresh", updated: daysAgo(-30), want: Confidence{Score: 0.90, Label: ConfidenceHigh, FromDataset: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreConfidence(tt.updated, tt.published, evalNow))
		})
	}
}

func TestScoreConfidenceMonotonic(t *testing.T) {
	prev := ScoreConfidence(daysAgo(0), nil, evalNow).Score
	for days := 1; days <= 1500; days++ {
		score := ScoreConfidence(daysAgo(days), nil, evalNow).Score
		require.LessOrEqualf(t, score, prev, "score rose between day %d and %d", days-1, days)
		prev = score
	}
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, LabelFor(0.85))
	assert.Equal(t, ConfidenceMedium, LabelFor(0.849))
	assert.Equal(t, ConfidenceMedium, LabelFor(0.60))
	assert.Equal(t, ConfidenceLow, LabelFor(0.599))
	assert.Equal(t, ConfidenceLow, LabelFor(0))
}
