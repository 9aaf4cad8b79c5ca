package utils

import (
	"strings"
	"unicode/utf8"
)

// UniqueStrings returns input with duplicates removed, first occurrence wins.
func UniqueStrings(input []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, val := range input {
		if !seen[val] {
			result = append(result, val)
			seen[val] = true
		}
	}
	return result
}

// Truncate shortens s to at most n runes, appending "..." when cut.
// Used to keep raw predictor output out of full-length log lines.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "..."
}
