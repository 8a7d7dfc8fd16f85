package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "notaryfix/pkg/domain-errors"
)

// TestParseStateCode validates the parsing invariant:
// "state codes are exactly two upper-case ASCII letters"
func TestParseStateCode(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		code, err := ParseStateCode("  ca ")
		require.NoError(t, err)
		assert.Equal(t, StateCode("CA"), code)
	})

	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseStateCode("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseStateCode("CAL")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects digits", func(t *testing.T) {
		_, err := ParseStateCode("C1")
		require.Error(t, err)
	})
}

func TestParseActType(t *testing.T) {
	t.Run("trims", func(t *testing.T) {
		act, err := ParseActType(" Jurat ")
		require.NoError(t, err)
		assert.Equal(t, ActType("Jurat"), act)
	})

	t.Run("rejects overly long names", func(t *testing.T) {
		_, err := ParseActType(strings.Repeat("a", 121))
		require.Error(t, err)
	})
}

func TestActTypeMatches(t *testing.T) {
	assert.True(t, ActType("Deed of Trust").Matches("deed of trust "))
	assert.False(t, ActType("Deed").Matches("Deed of Trust"))
}
