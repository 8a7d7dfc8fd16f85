package strings

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  Passport  ", "Military ID  "},
			expected: []string{"Passport", "Military ID"},
		},
		{
			name:     "removes case-insensitive duplicates keeping first spelling",
			input:    []string{"Passport", "PASSPORT", "Driver License", "passport"},
			expected: []string{"Passport", "Driver License"},
		},
		{
			name:     "drops blank entries",
			input:    []string{"", "   ", "State ID"},
			expected: []string{"State ID"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Run("short text is unchanged", func(t *testing.T) {
		assert.Equal(t, "two witnesses", Truncate("two witnesses", 250))
	})

	t.Run("text at the limit is unchanged", func(t *testing.T) {
		s := strings.Repeat("a", 250)
		assert.Equal(t, s, Truncate(s, 250))
	})

	t.Run("long text keeps limit runes plus one ellipsis", func(t *testing.T) {
		s := strings.Repeat("é", 300)
		got := Truncate(s, 250)
		assert.Equal(t, 251, utf8.RuneCountInString(got))
		assert.True(t, strings.HasSuffix(got, Ellipsis))
		assert.Equal(t, strings.Repeat("é", 250), strings.TrimSuffix(got, Ellipsis))
	})

	t.Run("non-positive limit", func(t *testing.T) {
		assert.Equal(t, "", Truncate("abc", 0))
	})
}
