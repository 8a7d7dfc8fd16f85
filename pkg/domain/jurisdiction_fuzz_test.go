//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseStateCode checks that parsing never panics on arbitrary input and
// that accepted codes are stable under re-parsing.
func FuzzParseStateCode(f *testing.F) {
	f.Add("")
	f.Add("CA")
	f.Add("ny")
	f.Add("  tx  ")
	f.Add("'; DROP TABLE state_rules;--")
	f.Add(string([]byte{0x00, 0x01}))
	f.Add("ÇA")

	f.Fuzz(func(t *testing.T, input string) {
		code, err := ParseStateCode(input)
		if err != nil {
			return
		}
		if len(code) != 2 {
			t.Errorf("accepted code with length %d", len(code))
		}
		again, err := ParseStateCode(code.String())
		if err != nil || again != code {
			t.Errorf("round-trip changed %q", code)
		}
		if !utf8.ValidString(input) {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

// FuzzParseActType ensures act names are bounded and trimmed.
func FuzzParseActType(f *testing.F) {
	f.Add("Deed of Trust")
	f.Add("")
	f.Add("   ")

	f.Fuzz(func(t *testing.T, input string) {
		act, err := ParseActType(input)
		if err != nil {
			return
		}
		if utf8.RuneCountInString(act.String()) > maxActTypeLength {
			t.Errorf("accepted act longer than %d runes", maxActTypeLength)
		}
		if act == "" {
			t.Error("accepted empty act")
		}
	})
}
