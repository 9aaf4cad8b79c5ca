package querycache

import (
	"sort"
	"time"
)

// Store holds one user's normalized-key cache. It is not self-synchronized;
// the owning UserContext's mutex guards all access.
type Store struct {
	entries map[string]Entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Lookup resolves key against the live entry set: exact match first, then
// the single closest fuzzy match at or above SimilarityThreshold. The
// returned matchedKey names the entry that actually served the hit. Expired
// entries are skipped, never removed; overwrite is the only deletion.
func (s *Store) Lookup(key string, now time.Time) (entry Entry, matchedKey string, fuzzy, ok bool) {
	if e, exists := s.entries[key]; exists && e.Live(now) {
		return e, key, false, true
	}

	bestScore := 0.0
	for k, e := range s.entries {
		if k == key || !e.Live(now) {
			continue
		}
		score := Similarity(key, k)
		if score < SimilarityThreshold {
			continue
		}
		if score > bestScore || (score == bestScore && k < matchedKey) {
			bestScore = score
			matchedKey = k
		}
	}
	if matchedKey != "" {
		return s.entries[matchedKey], matchedKey, true, true
	}
	return Entry{}, "", false, false
}

// Put overwrites the entry at key unconditionally. Used for backend fills,
// forced refreshes, and prefetch fills alike.
func (s *Store) Put(key string, e Entry) {
	s.entries[key] = e
}

// HasLive reports whether a live entry exists at key.
func (s *Store) HasLive(key string, now time.Time) bool {
	e, ok := s.entries[key]
	return ok && e.Live(now)
}

// Snapshot returns the live entries sorted by key, with remaining TTL in
// whole seconds. Entries at or past expiry are excluded.
func (s *Store) Snapshot(now time.Time) []SnapshotRow {
	rows := make([]SnapshotRow, 0, len(s.entries))
	for k, e := range s.entries {
		remaining := e.ExpiresIn(now)
		if remaining <= 0 {
			continue
		}
		rows = append(rows, SnapshotRow{Query: k, Source: e.Source, ExpiresIn: remaining})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Query < rows[j].Query })
	return rows
}

// Dump returns a copy of the raw map, stale rows included. Export relies on
// seeing expired-but-not-yet-overwritten entries.
func (s *Store) Dump() map[string]Entry {
	out := make(map[string]Entry, len(s.entries))
	for k, e := range s.entries {
		out[k] = e
	}
	return out
}

// Len returns the number of entries, live or not.
func (s *Store) Len() int {
	return len(s.entries)
}
