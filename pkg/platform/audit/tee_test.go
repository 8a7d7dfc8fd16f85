package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notaryfix/pkg/platform/audit"
	"notaryfix/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("broker down") }

func TestTee(t *testing.T) {
	ctx := context.Background()

	t.Run("mirror failure does not skip primary", func(t *testing.T) {
		primary := memory.NewInMemoryStore()
		mirror := memory.NewInMemoryStore()
		tee := audit.NewTee(primary, failingStore{}, nil, mirror)

		err := tee.Append(ctx, audit.Event{Subject: "u-1", Action: string(audit.EventGateAllowed)})
		require.EqualError(t, err, "broker down")

		events, err := tee.ListBySubject(ctx, "u-1")
		require.NoError(t, err)
		assert.Len(t, events, 1)

		mirrored, err := mirror.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, mirrored, 1)
	})

	t.Run("primary without reads", func(t *testing.T) {
		tee := audit.NewTee(failingStore{})
		_, err := tee.ListBySubject(ctx, "u-1")
		assert.ErrorIs(t, err, audit.ErrNoLister)
	})
}
