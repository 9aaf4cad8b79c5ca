// Package querycache implements the per-user query cache: normalized keys,
// TTL expiry, fuzzy matching on misses, a bounded lookup log, and the
// analytics derived from it. Speculative prefetch hangs off every lookup
// through the PrefetchTrigger seam so the request path never waits on it.
package querycache

import (
	"context"
	"errors"
	"time"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/backend"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
)

// ErrEmptyQuery rejects lookups whose query normalizes to nothing.
var ErrEmptyQuery = errors.New("query must not be empty")

// PrefetchTrigger accepts fire-and-forget prefetch work after a lookup.
// Implementations must never block the caller.
type PrefetchTrigger interface {
	Trigger(user string, uc *UserContext, history []string)
}

// ServiceConfig carries the tunables the service needs from the app config.
type ServiceConfig struct {
	TTL              time.Duration
	HistoryWindow    int
	DefaultThreshold float64
	BackendLatencyMS int
	CacheLatencyMS   int
}

// Service ties the registry, the upstream fetcher, and the prefetch
// scheduler together behind the operations the API exposes.
type Service struct {
	registry   *Registry
	fetcher    backend.Fetcher
	threshold  *ThresholdCell
	prefetcher PrefetchTrigger
	cfg        ServiceConfig
	now        func() time.Time
}

// NewService builds a service over the given registry and fetcher.
func NewService(registry *Registry, fetcher backend.Fetcher, cfg ServiceConfig) *Service {
	return &Service{
		registry:  registry,
		fetcher:   fetcher,
		threshold: NewThresholdCell(cfg.DefaultThreshold),
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetPrefetcher wires the prefetch scheduler in after construction, breaking
// the otherwise circular dependency between the two.
func (s *Service) SetPrefetcher(p PrefetchTrigger) {
	s.prefetcher = p
}

// Registry exposes the user registry for metrics collection and admin ops.
func (s *Service) Registry() *Registry {
	return s.registry
}

// ConfidenceThreshold returns the current prefetch admission threshold.
func (s *Service) ConfidenceThreshold() float64 {
	return s.threshold.Get()
}

// SetConfidenceThreshold replaces the prefetch admission threshold.
func (s *Service) SetConfidenceThreshold(v float64) error {
	if err := s.threshold.Set(v); err != nil {
		return err
	}
	logger.Info("confidence threshold updated", "threshold", v)
	return nil
}

// Search resolves a query for a user: exact hit, fuzzy hit, or a backend
// fetch on miss. Every call is logged, counted, and followed by an async
// prefetch trigger carrying the user's recent history.
func (s *Service) Search(ctx context.Context, user, rawQuery string) (SearchResult, error) {
	key := Normalize(rawQuery)
	if key == "" {
		return SearchResult{}, ErrEmptyQuery
	}
	uc := s.registry.Get(user)
	now := s.now()

	uc.mu.Lock()
	entry, matchedKey, fuzzy, ok := uc.store.Lookup(key, now)
	if ok {
		source := SourceCache
		switch {
		case fuzzy:
			source = SourceFuzzy
		case entry.Source == SourcePredicted:
			source = SourcePredicted
		}
		uc.hitLog.Record(rawQuery, source, now)
		uc.counters.TotalCacheHits++
		uc.counters.APICallsSaved++
		history := uc.hitLog.LastN(s.cfg.HistoryWindow)
		uc.mu.Unlock()

		metrics.CacheLookupsTotal.WithLabelValues(string(source)).Inc()
		logger.DebugContext(ctx, "cache hit",
			"user", user, "query", rawQuery, "matched_key", matchedKey, "source", source)
		s.trigger(user, uc, history)
		return SearchResult{Result: entry.Result, Source: source}, nil
	}
	uc.mu.Unlock()

	result, err := s.fetcher.Fetch(ctx, rawQuery)
	if err != nil {
		return SearchResult{}, err
	}
	filledAt := s.now()

	uc.mu.Lock()
	uc.store.Put(key, Entry{
		Result:    result,
		CreatedAt: filledAt,
		TTL:       s.cfg.TTL,
		Source:    SourceBackend,
	})
	uc.hitLog.Record(rawQuery, SourceBackend, filledAt)
	uc.counters.TotalBackendCalls++
	history := uc.hitLog.LastN(s.cfg.HistoryWindow)
	uc.mu.Unlock()

	metrics.CacheLookupsTotal.WithLabelValues(string(SourceBackend)).Inc()
	logger.DebugContext(ctx, "cache miss", "user", user, "query", rawQuery)
	s.trigger(user, uc, history)
	return SearchResult{Result: result, Source: SourceBackend}, nil
}

// ForceRefresh overwrites a key from the backend unconditionally. It touches
// neither the hit log nor the counters.
func (s *Service) ForceRefresh(ctx context.Context, user, rawQuery string) (string, error) {
	key := Normalize(rawQuery)
	if key == "" {
		return "", ErrEmptyQuery
	}
	result, err := s.fetcher.Refresh(ctx, rawQuery)
	if err != nil {
		return "", err
	}
	uc := s.registry.Get(user)
	uc.mu.Lock()
	uc.store.Put(key, Entry{
		Result:    result,
		CreatedAt: s.now(),
		TTL:       s.cfg.TTL,
		Source:    SourceBackend,
	})
	uc.mu.Unlock()

	metrics.CacheRefreshesTotal.Inc()
	logger.InfoContext(ctx, "cache entry refreshed", "user", user, "query", rawQuery)
	return result, nil
}

// Dashboard assembles the per-user analytics view.
func (s *Service) Dashboard(user string) Dashboard {
	uc := s.registry.Get(user)
	now := s.now()

	uc.mu.Lock()
	defer uc.mu.Unlock()

	hits, misses := uc.hitLog.Counts()
	missRate := 0.0
	if total := hits + misses; total > 0 {
		missRate = float64(misses) / float64(total)
	}
	c := uc.counters
	avgSaved := 0.0
	if denom := c.TotalBackendCalls + c.TotalCacheHits; denom > 0 {
		perHit := s.cfg.BackendLatencyMS - s.cfg.CacheLatencyMS
		avgSaved = float64(c.APICallsSaved*int64(perHit)) / float64(denom)
	}
	preds := make([]Candidate, len(uc.predictions))
	copy(preds, uc.predictions)

	return Dashboard{
		Cache:             uc.store.Snapshot(now),
		Last10Hits:        uc.hitLog.Records(),
		MissRate:          missRate,
		Predictions:       preds,
		APICallsSaved:     c.APICallsSaved,
		TotalBackendCalls: c.TotalBackendCalls,
		TotalCacheHits:    c.TotalCacheHits,
		AvgLatencySaved:   avgSaved,
	}
}

// Predictions returns the user's most recent prediction list.
func (s *Service) Predictions(user string) []Candidate {
	return s.registry.Get(user).Predictions()
}

// Export assembles the raw per-user dump, expired entries included.
func (s *Service) Export(user string) ExportData {
	uc := s.registry.Get(user)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	preds := make([]Candidate, len(uc.predictions))
	copy(preds, uc.predictions)
	return ExportData{
		Cache:       uc.store.Dump(),
		Last10Hits:  uc.hitLog.Records(),
		Predictions: preds,
	}
}

// PurgeUser drops one user's entire state. Reports whether it existed.
func (s *Service) PurgeUser(user string) bool {
	return s.registry.Purge(user)
}

// PurgeAll drops every user's state.
func (s *Service) PurgeAll() {
	s.registry.PurgeAll()
}

func (s *Service) trigger(user string, uc *UserContext, history []string) {
	if s.prefetcher == nil {
		return
	}
	s.prefetcher.Trigger(user, uc, history)
}
