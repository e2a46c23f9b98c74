package utils

import "strings"

// Preview renders s on a single log line: whitespace runs collapse to one space
// and the result is cut to limit runes with an ellipsis. A non-positive limit
// yields an empty string.
func Preview(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
