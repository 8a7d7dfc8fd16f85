package compliance

import (
	"strings"

	"notaryfix/pkg/domain"
)

// builtinThumbprintActs lists (state, act) pairs that require a journal
// thumbprint even when no published rule says so. Static-only callers rely on
// it, and it backs up datasets that omit the flag.
var builtinThumbprintActs = map[domain.StateCode][]string{
	"CA": {
		"Deed",
		"Deed of Trust",
		"Grant Deed",
		"Quitclaim Deed",
		"Warranty Deed",
		"Power of Attorney",
		"Durable Power of Attorney",
	},
}

// builtinThumbprintRequired reports whether (state, act) is in the built-in
// thumbprint table. Act names compare case-insensitively.
func builtinThumbprintRequired(state domain.StateCode, act string) bool {
	for _, candidate := range builtinThumbprintActs[state] {
		if strings.EqualFold(candidate, strings.TrimSpace(act)) {
			return true
		}
	}
	return false
}
