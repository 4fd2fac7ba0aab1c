// Package textutil holds the small text measurements shared by the planner and writer.
package textutil

import (
	"strings"
	"unicode/utf8"
)

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Truncate cuts s to at most limit characters. Invalid bytes count as one
// character each and are kept as-is.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// Preview truncates s and marks the cut with an ellipsis.
func Preview(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return Truncate(s, limit) + "..."
}
