package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "notaryfix/pkg/platform/audit"
)

func TestNewRecord(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

	t.Run("keys by state code", func(t *testing.T) {
		event := audit.Event{
			Category:  audit.CategoryOperations,
			Timestamp: at,
			Action:    string(audit.EventComplianceEvaluated),
			StateCode: "CA",
			ActType:   "Deed of Trust",
			Decision:  "critical",
		}
		record, err := newRecord("notaryfix.audit", event)
		require.NoError(t, err)

		assert.Equal(t, "notaryfix.audit", record.Topic)
		assert.Equal(t, "CA", string(record.Key))
		assert.Equal(t, at, record.Timestamp)
		require.Len(t, record.Headers, 2)
		assert.Equal(t, "compliance_evaluated", string(record.Headers[0].Value))

		var decoded audit.Event
		require.NoError(t, json.Unmarshal(record.Value, &decoded))
		assert.Equal(t, event, decoded)
	})

	t.Run("falls back to category key", func(t *testing.T) {
		record, err := newRecord("t", audit.Event{Category: audit.CategoryCompliance, Action: string(audit.EventDatasetReloaded)})
		require.NoError(t, err)
		assert.Equal(t, "compliance", string(record.Key))
	})
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Topic: "t"}, nil)
	assert.Error(t, err)

	_, err = New(Config{Brokers: []string{"localhost:9092"}}, nil)
	assert.Error(t, err)
}
