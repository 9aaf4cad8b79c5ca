package querycache

import "strings"

// Normalize canonicalizes raw query text into a cache key: trimmed and
// lower-cased. Pure and total.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
