package querycache

import (
	"encoding/json"
	"time"
)

// Source identifies where a lookup result came from.
type Source string

const (
	SourceBackend   Source = "backend"
	SourceCache     Source = "cache"
	SourcePredicted Source = "predicted"
	SourceFuzzy     Source = "fuzzy_cache"
)

// IsHit reports whether a hit-log source counts as a cache hit. Fuzzy and
// predicted hits count the same as exact hits for savings purposes.
func (s Source) IsHit() bool {
	return s == SourceCache || s == SourcePredicted || s == SourceFuzzy
}

// Entry is a single cached result. Entries are replaced whole on overwrite
// and expire lazily: an expired entry stays in the map until overwritten,
// but every read path except Dump skips it.
type Entry struct {
	Result     string
	CreatedAt  time.Time
	TTL        time.Duration
	Source     Source
	Confidence *float64
}

// Live reports whether the entry is still within its TTL at now.
func (e Entry) Live(now time.Time) bool {
	return now.Sub(e.CreatedAt) < e.TTL
}

// ExpiresIn returns the remaining TTL at now in whole seconds (<= 0 for
// expired entries).
func (e Entry) ExpiresIn(now time.Time) int64 {
	return int64(e.TTL.Seconds()) - int64(now.Sub(e.CreatedAt).Seconds())
}

// MarshalJSON emits the raw dump shape used by Export: unix-second
// timestamp and TTL in whole seconds.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Result     string   `json:"result"`
		Timestamp  int64    `json:"timestamp"`
		Expiry     int64    `json:"expiry"`
		Source     Source   `json:"source"`
		Confidence *float64 `json:"confidence,omitempty"`
	}{e.Result, e.CreatedAt.Unix(), int64(e.TTL.Seconds()), e.Source, e.Confidence})
}

// HitRecord is one lookup in the bounded hit log. Query keeps the raw text
// as the user typed it; the predictor sees raw queries, not normalized keys.
type HitRecord struct {
	Query  string
	Source Source
	Time   time.Time
}

// MarshalJSON serializes the record with a unix-second timestamp.
func (h HitRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Query  string `json:"query"`
		Source Source `json:"source"`
		Time   int64  `json:"time"`
	}{h.Query, h.Source, h.Time.Unix()})
}

// Candidate is a predicted next query with the predictor's confidence.
type Candidate struct {
	Query      string  `json:"query"`
	Confidence float64 `json:"confidence"`
}

// Counters are the per-user all-time analytics counters. Monotonic; reset
// only by process restart or an admin purge of the user.
type Counters struct {
	APICallsSaved     int64 `json:"api_calls_saved"`
	TotalBackendCalls int64 `json:"total_backend_calls"`
	TotalCacheHits    int64 `json:"total_cache_hits"`
}

// SnapshotRow is one live cache entry in the dashboard projection.
type SnapshotRow struct {
	Query     string `json:"query"`
	Source    Source `json:"source"`
	ExpiresIn int64  `json:"expires_in"`
}

// Dashboard is the read-only projection served to the dashboard UI.
type Dashboard struct {
	Cache             []SnapshotRow `json:"cache"`
	Last10Hits        []HitRecord   `json:"last_10_hits"`
	MissRate          float64       `json:"miss_rate"`
	Predictions       []Candidate   `json:"predictions"`
	APICallsSaved     int64         `json:"api_calls_saved"`
	TotalBackendCalls int64         `json:"total_backend_calls"`
	TotalCacheHits    int64         `json:"total_cache_hits"`
	AvgLatencySaved   float64       `json:"avg_latency_saved"`
}

// ExportData is the raw export payload. Cache deliberately includes
// expired-but-not-yet-overwritten rows.
type ExportData struct {
	Cache       map[string]Entry `json:"cache"`
	Last10Hits  []HitRecord      `json:"last_10_hits"`
	Predictions []Candidate      `json:"predictions"`
}

// SearchResult is the outcome of one lookup.
type SearchResult struct {
	Result string `json:"result"`
	Source Source `json:"source"`
}
