// Package strings provides string helpers shared by dataset loading and
// finding rendering.
package strings

import (
	"strings"
)

// DedupeAndTrim removes empty entries and case-insensitive duplicates from a
// slice, trimming whitespace from each element. The first spelling seen wins
// and order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{" Passport ", "passport", "", "Driver License"})
//	// Returns: []string{"Passport", "Driver License"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
