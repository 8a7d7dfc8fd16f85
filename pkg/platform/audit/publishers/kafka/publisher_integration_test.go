//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"notaryfix/pkg/platform/audit"
	"notaryfix/pkg/platform/audit/store/memory"
	"notaryfix/pkg/testutil/containers"
)

func TestPublisherAgainstBroker(t *testing.T) {
	broker := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	const topic = "notaryfix.audit.test"
	pub, err := New(Config{Brokers: broker.Brokers, Topic: topic},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close(context.Background()) })

	require.NoError(t, pub.EnsureTopic(ctx, 1, 1))
	require.NoError(t, pub.EnsureTopic(ctx, 1, 1), "existing topic is not an error")

	primary := memory.NewInMemoryStore()
	tee := audit.NewTee(primary, pub)
	event := audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Subject:   "u-7",
		Action:    string(audit.EventDatasetReloaded),
		StateCode: "CA",
		RequestID: "req-7",
	}
	require.NoError(t, tee.Append(ctx, event))

	stored, err := tee.ListBySubject(ctx, "u-7")
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	var records []*kgo.Record
	for len(records) == 0 {
		fetches := consumer.PollFetches(ctx)
		require.NoError(t, ctx.Err(), "no record consumed before timeout")
		require.Empty(t, fetches.Errors())
		records = append(records, fetches.Records()...)
	}

	record := records[0]
	assert.Equal(t, "CA", string(record.Key))
	var got audit.Event
	require.NoError(t, json.Unmarshal(record.Value, &got))
	assert.Equal(t, event, got)

	headers := map[string]string{}
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, string(audit.EventDatasetReloaded), headers["action"])
	assert.Equal(t, string(audit.CategoryCompliance), headers["category"])
}
