package querycache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/backend"
)

func newTestService() *Service {
	reg := NewRegistry(64, time.Hour)
	return NewService(reg, backend.NewSimulated(0), ServiceConfig{
		TTL:              5 * time.Minute,
		HistoryWindow:    3,
		DefaultThreshold: 0.6,
		BackendLatencyMS: 500,
		CacheLatencyMS:   30,
	})
}

type recordingTrigger struct {
	mu        sync.Mutex
	users     []string
	histories [][]string
}

func (r *recordingTrigger) Trigger(user string, _ *UserContext, history []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, user)
	r.histories = append(r.histories, history)
}

func TestSearchMissThenHit(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	first, err := s.Search(ctx, "kapil", "Weather in Delhi")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if first.Source != SourceBackend {
		t.Errorf("first Search() source = %q, want %q", first.Source, SourceBackend)
	}
	if first.Result != "Backend result for Weather in Delhi" {
		t.Errorf("first Search() result = %q", first.Result)
	}

	// Same query, different surface casing: normalizes to the same key.
	second, err := s.Search(ctx, "kapil", "weather in delhi")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if second.Source != SourceCache {
		t.Errorf("second Search() source = %q, want %q", second.Source, SourceCache)
	}
	if second.Result != first.Result {
		t.Errorf("hit returned %q, want the cached %q", second.Result, first.Result)
	}

	d := s.Dashboard("kapil")
	if d.TotalBackendCalls != 1 || d.TotalCacheHits != 1 || d.APICallsSaved != 1 {
		t.Errorf("counters = backend %d, hits %d, saved %d; want 1/1/1",
			d.TotalBackendCalls, d.TotalCacheHits, d.APICallsSaved)
	}
	if d.MissRate != 0.5 {
		t.Errorf("MissRate = %v, want 0.5", d.MissRate)
	}
	if d.AvgLatencySaved != 235.0 {
		t.Errorf("AvgLatencySaved = %v, want 235 (1*(500-30)/2)", d.AvgLatencySaved)
	}
}

func TestSearchFuzzyHit(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, err := s.Search(ctx, "kapil", "weather in delhi"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	got, err := s.Search(ctx, "kapil", "weathr in delhi")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got.Source != SourceFuzzy {
		t.Errorf("Search() source = %q, want %q", got.Source, SourceFuzzy)
	}
	if got.Result != "Backend result for weather in delhi" {
		t.Errorf("fuzzy hit result = %q, want the original entry", got.Result)
	}
}

func TestSearchPredictedHit(t *testing.T) {
	s := newTestService()
	uc := s.Registry().Get("kapil")
	uc.Prefetch([]Candidate{{Query: "news today", Confidence: 0.9}}, 0.6, 5*time.Minute, time.Now())

	got, err := s.Search(context.Background(), "kapil", "news today")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got.Source != SourcePredicted {
		t.Errorf("Search() source = %q, want %q", got.Source, SourcePredicted)
	}
	if got.Result != "Predicted backend result for news today" {
		t.Errorf("Search() result = %q", got.Result)
	}
}

func TestSearchUserIsolation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, err := s.Search(ctx, "alice", "weather in delhi"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	got, err := s.Search(ctx, "bob", "weather in delhi")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got.Source != SourceBackend {
		t.Errorf("bob's first Search() source = %q, want %q (no cross-user sharing)", got.Source, SourceBackend)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	s := newTestService()
	for _, q := range []string{"", "   ", "\t\n"} {
		if _, err := s.Search(context.Background(), "kapil", q); err != ErrEmptyQuery {
			t.Errorf("Search(%q) error = %v, want ErrEmptyQuery", q, err)
		}
	}
}

func TestSearchExpiredEntryRefetches(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	if _, err := s.Search(ctx, "kapil", "news today"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	s.now = func() time.Time { return base.Add(6 * time.Minute) }
	got, err := s.Search(ctx, "kapil", "news today")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got.Source != SourceBackend {
		t.Errorf("Search() after expiry source = %q, want %q", got.Source, SourceBackend)
	}
}

func TestSearchTriggersPrefetchWithHistory(t *testing.T) {
	s := newTestService()
	rec := &recordingTrigger{}
	s.SetPrefetcher(rec)
	ctx := context.Background()

	for _, q := range []string{"q one", "q two", "q three", "q four"} {
		if _, err := s.Search(ctx, "kapil", q); err != nil {
			t.Fatalf("Search(%q) error = %v", q, err)
		}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.histories) != 4 {
		t.Fatalf("trigger fired %d times, want 4", len(rec.histories))
	}
	last := rec.histories[3]
	want := []string{"q two", "q three", "q four"}
	if len(last) != len(want) {
		t.Fatalf("last history = %v, want %v", last, want)
	}
	for i := range want {
		if last[i] != want[i] {
			t.Fatalf("last history = %v, want %v", last, want)
		}
	}
	if rec.users[0] != "kapil" {
		t.Errorf("trigger user = %q, want kapil", rec.users[0])
	}
}

func TestForceRefresh(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, err := s.Search(ctx, "kapil", "news today"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	before := s.Dashboard("kapil")

	result, err := s.ForceRefresh(ctx, "kapil", "news today")
	if err != nil {
		t.Fatalf("ForceRefresh() error = %v", err)
	}
	if result != "Backend result for news today (refreshed)" {
		t.Errorf("ForceRefresh() result = %q", result)
	}

	after := s.Dashboard("kapil")
	if after.TotalBackendCalls != before.TotalBackendCalls ||
		after.TotalCacheHits != before.TotalCacheHits ||
		after.APICallsSaved != before.APICallsSaved {
		t.Error("ForceRefresh() moved lookup counters; it must not")
	}
	if len(after.Last10Hits) != len(before.Last10Hits) {
		t.Error("ForceRefresh() appended to the hit log; it must not")
	}

	got, err := s.Search(ctx, "kapil", "news today")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got.Result != result || got.Source != SourceCache {
		t.Errorf("Search() after refresh = (%q, %q), want refreshed entry from cache", got.Result, got.Source)
	}
}

func TestForceRefreshEmptyQuery(t *testing.T) {
	s := newTestService()
	if _, err := s.ForceRefresh(context.Background(), "kapil", "  "); err != ErrEmptyQuery {
		t.Errorf("ForceRefresh() error = %v, want ErrEmptyQuery", err)
	}
}

func TestDashboardEmptyUser(t *testing.T) {
	s := newTestService()
	d := s.Dashboard("fresh")
	if d.MissRate != 0 || d.AvgLatencySaved != 0 {
		t.Errorf("empty dashboard rates = (%v, %v), want zeros", d.MissRate, d.AvgLatencySaved)
	}
	if d.Cache == nil || d.Last10Hits == nil || d.Predictions == nil {
		t.Error("empty dashboard has nil collections; want empty non-nil for JSON")
	}
}

func TestExportIncludesStaleRows(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	if _, err := s.Search(ctx, "kapil", "old query"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	s.now = func() time.Time { return base.Add(time.Hour) }

	ex := s.Export("kapil")
	if _, ok := ex.Cache["old query"]; !ok {
		t.Error("Export() dropped the expired row; raw dump must retain it")
	}
	if len(ex.Last10Hits) != 1 {
		t.Errorf("Export() hit log length = %d, want 1", len(ex.Last10Hits))
	}
}

func TestSetConfidenceThreshold(t *testing.T) {
	s := newTestService()
	if err := s.SetConfidenceThreshold(0.8); err != nil {
		t.Fatalf("SetConfidenceThreshold(0.8) error = %v", err)
	}
	if got := s.ConfidenceThreshold(); got != 0.8 {
		t.Errorf("ConfidenceThreshold() = %v, want 0.8", got)
	}
	if err := s.SetConfidenceThreshold(1.2); err == nil {
		t.Error("SetConfidenceThreshold(1.2) error = nil, want validation error")
	}
}
