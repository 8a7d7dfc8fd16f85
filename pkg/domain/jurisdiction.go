package domain

import (
	"strings"
	"unicode/utf8"

	dErrors "notaryfix/pkg/domain-errors"
)

// StateCode is a two-letter jurisdiction code such as "CA".
// The zero value means "no jurisdiction supplied".
type StateCode string

// ParseStateCode normalizes and validates a jurisdiction code at trust
// boundaries: surrounding whitespace is dropped and letters are upper-cased.
func ParseStateCode(s string) (StateCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "state_code is required")
	}
	if !utf8.ValidString(s) || len(s) != 2 {
		return "", dErrors.New(dErrors.CodeValidation, "state_code must be two letters")
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", dErrors.New(dErrors.CodeValidation, "state_code must be two letters")
		}
	}
	return StateCode(s), nil
}

// NormalizeStateCode upper-cases and trims without validating. Lookups use it so
// that stored records and queries agree on case.
func NormalizeStateCode(s string) StateCode {
	return StateCode(strings.ToUpper(strings.TrimSpace(s)))
}

func (c StateCode) String() string { return string(c) }

// IsZero reports whether no code was supplied.
func (c StateCode) IsZero() bool { return c == "" }

// ActType is the notarial act name as entered by the user ("Deed of Trust",
// "Jurat"). Comparison is case-insensitive; the original spelling is kept for
// display.
type ActType string

// maxActTypeLength bounds free-text act names accepted over the wire.
const maxActTypeLength = 120

// ParseActType trims and bounds an act type name.
func ParseActType(s string) (ActType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "act_type is required")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeValidation, "act_type must be valid UTF-8")
	}
	if utf8.RuneCountInString(s) > maxActTypeLength {
		return "", dErrors.New(dErrors.CodeValidation, "act_type must be at most 120 characters")
	}
	return ActType(s), nil
}

func (a ActType) String() string { return string(a) }

// Matches compares two act names case-insensitively, ignoring surrounding space.
func (a ActType) Matches(other string) bool {
	return strings.EqualFold(strings.TrimSpace(string(a)), strings.TrimSpace(other))
}
