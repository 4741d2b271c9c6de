package utils

import "strconv"

// Truncate shortens s to maxLen runes, appending "..." when it cuts.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// Plural renders a count with its noun, e.g. "1 record" or "12 records".
func Plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
