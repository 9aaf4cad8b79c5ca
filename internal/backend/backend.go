// Package backend abstracts the upstream data source queries are answered
// from. The shipped implementation simulates one with a fixed latency so
// the cache's savings are measurable without a real dependency.
package backend

import (
	"context"
	"time"
)

// Fetcher answers queries from the upstream source.
type Fetcher interface {
	// Fetch resolves a query on a miss.
	Fetch(ctx context.Context, query string) (string, error)
	// Refresh resolves a query for a forced cache overwrite.
	Refresh(ctx context.Context, query string) (string, error)
}

// Simulated is a Fetcher that sleeps for a configured delay and synthesizes
// a deterministic result.
type Simulated struct {
	Delay time.Duration
}

// NewSimulated creates a simulated fetcher with the given artificial latency.
func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{Delay: delay}
}

func (s *Simulated) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Simulated) Fetch(ctx context.Context, query string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	return "Backend result for " + query, nil
}

func (s *Simulated) Refresh(ctx context.Context, query string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	return "Backend result for " + query + " (refreshed)", nil
}
