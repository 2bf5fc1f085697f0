package utils

import "unicode/utf8"

const ellipsis = "…"

// Truncate shortens s to at most n characters, the trailing ellipsis included.
// Display only: stored text is never cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + ellipsis
}
