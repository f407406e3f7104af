package utils

// Truncate shortens s to at most maxLen runes, appending "..." when anything
// was cut. Dialogue text is frequently non-ASCII, so it never splits a rune.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// Prefix returns the first n runes of s.
func Prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
