package strings

// Ellipsis is appended to text cut by Truncate.
const Ellipsis = "…"

// Truncate shortens s to at most limit runes. When s is longer, the first
// limit runes are kept and a single Ellipsis is appended, so the result is
// limit+1 runes. Strings at or under the limit are returned unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i] + Ellipsis
		}
		count++
	}
	return s
}
