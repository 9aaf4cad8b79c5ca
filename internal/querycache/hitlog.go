package querycache

import "time"

// HitLogCap bounds the retained lookup history per user.
const HitLogCap = 10

// HitLog is a fixed-capacity FIFO of recent lookups, hits and misses both.
// Not self-synchronized; guarded by the owning UserContext's mutex.
type HitLog struct {
	records []HitRecord
}

// NewHitLog creates an empty log.
func NewHitLog() *HitLog {
	return &HitLog{records: make([]HitRecord, 0, HitLogCap)}
}

// Record appends a lookup outcome, evicting the oldest record once the log
// is full.
func (l *HitLog) Record(query string, source Source, at time.Time) {
	if len(l.records) >= HitLogCap {
		l.records = append(l.records[:0], l.records[1:]...)
	}
	l.records = append(l.records, HitRecord{Query: query, Source: source, Time: at})
}

// LastN returns the raw query text of the n most recent records, oldest
// first. Fewer records than n returns what exists.
func (l *HitLog) LastN(n int) []string {
	if n > len(l.records) {
		n = len(l.records)
	}
	out := make([]string, 0, n)
	for _, r := range l.records[len(l.records)-n:] {
		out = append(out, r.Query)
	}
	return out
}

// Counts tallies hits and misses across the retained window.
func (l *HitLog) Counts() (hits, misses int) {
	for _, r := range l.records {
		if r.Source.IsHit() {
			hits++
		} else {
			misses++
		}
	}
	return hits, misses
}

// Records returns a copy of the retained records, oldest first.
func (l *HitLog) Records() []HitRecord {
	out := make([]HitRecord, len(l.records))
	copy(out, l.records)
	return out
}
