//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notaryfix/pkg/testutil/containers"
)

func TestRedisStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	s := NewRedisStore(rc.Client)
	clock := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	s.now = func() time.Time { return clock }

	for i := range 2 {
		result, err := s.Allow(ctx, "ip:a", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 1-i, result.Remaining)
		assert.Equal(t, time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC), result.ResetAt)
	}

	result, err := s.Allow(ctx, "ip:a", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	clock = clock.Add(time.Minute)
	result, err = s.Allow(ctx, "ip:a", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
