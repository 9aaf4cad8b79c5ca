package querycache

import (
	"sync"
	"time"
)

// UserContext is the unit of isolation: one cache store, hit log,
// prediction list, and counter set per user. A single mutex guards all of
// it so that a hit-log append and the history snapshot taken for prefetch
// are ordered under one lock hold.
type UserContext struct {
	mu          sync.Mutex
	store       *Store
	hitLog      *HitLog
	predictions []Candidate
	counters    Counters
}

// NewUserContext creates an empty context.
func NewUserContext() *UserContext {
	return &UserContext{
		store:       NewStore(),
		hitLog:      NewHitLog(),
		predictions: []Candidate{},
	}
}

// PrefetchOutcome tallies what happened to each candidate in one admission
// pass.
type PrefetchOutcome struct {
	Admitted       int
	BelowThreshold int
	AlreadyCached  int
}

// ReplacePredictions swaps the stored prediction list wholesale.
func (u *UserContext) ReplacePredictions(cands []Candidate) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.predictions = append(u.predictions[:0:0], cands...)
	if u.predictions == nil {
		u.predictions = []Candidate{}
	}
}

// Predictions returns a copy of the most recent prediction list.
func (u *UserContext) Predictions() []Candidate {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]Candidate, len(u.predictions))
	copy(out, u.predictions)
	return out
}

// Cached peeks at the live entry under the normalized form of query, if
// any. Read-only: no hit log, no counters.
func (u *UserContext) Cached(query string, now time.Time) (Entry, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	key := Normalize(query)
	if !u.store.HasLive(key, now) {
		return Entry{}, false
	}
	e, _, _, _ := u.store.Lookup(key, now)
	return e, true
}

// Prefetch admits candidates into the cache. A candidate is admitted only
// when its confidence clears threshold and no live entry already covers its
// normalized key. Admitted entries carry a synthesized result and do not
// touch the hit log or counters; those move only on real lookups.
func (u *UserContext) Prefetch(cands []Candidate, threshold float64, ttl time.Duration, now time.Time) PrefetchOutcome {
	u.mu.Lock()
	defer u.mu.Unlock()

	var out PrefetchOutcome
	for _, c := range cands {
		key := Normalize(c.Query)
		if key == "" {
			continue
		}
		if c.Confidence < threshold {
			out.BelowThreshold++
			continue
		}
		if u.store.HasLive(key, now) {
			out.AlreadyCached++
			continue
		}
		conf := c.Confidence
		u.store.Put(key, Entry{
			Result:     "Predicted backend result for " + c.Query,
			CreatedAt:  now,
			TTL:        ttl,
			Source:     SourcePredicted,
			Confidence: &conf,
		})
		out.Admitted++
	}
	return out
}
