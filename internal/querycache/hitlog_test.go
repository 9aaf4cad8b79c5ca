package querycache

import (
	"fmt"
	"testing"
	"time"
)

func TestHitLogCap(t *testing.T) {
	l := NewHitLog()
	now := time.Now()
	for i := 0; i < 15; i++ {
		l.Record(fmt.Sprintf("q%d", i), SourceBackend, now)
	}
	recs := l.Records()
	if len(recs) != HitLogCap {
		t.Fatalf("Records() length = %d, want %d", len(recs), HitLogCap)
	}
	if recs[0].Query != "q5" || recs[len(recs)-1].Query != "q14" {
		t.Errorf("Records() window = [%s..%s], want [q5..q14]", recs[0].Query, recs[len(recs)-1].Query)
	}
}

func TestHitLogLastN(t *testing.T) {
	l := NewHitLog()
	now := time.Now()
	l.Record("first", SourceBackend, now)
	l.Record("second", SourceCache, now)
	l.Record("third", SourceBackend, now)

	got := l.LastN(2)
	if len(got) != 2 || got[0] != "second" || got[1] != "third" {
		t.Errorf("LastN(2) = %v, want [second third]", got)
	}
	if got := l.LastN(10); len(got) != 3 {
		t.Errorf("LastN(10) length = %d, want 3", len(got))
	}
}

func TestHitLogCounts(t *testing.T) {
	l := NewHitLog()
	now := time.Now()
	l.Record("a", SourceBackend, now)
	l.Record("b", SourceCache, now)
	l.Record("c", SourcePredicted, now)
	l.Record("d", SourceFuzzy, now)

	hits, misses := l.Counts()
	if hits != 3 || misses != 1 {
		t.Errorf("Counts() = (%d, %d), want (3, 1)", hits, misses)
	}
}
