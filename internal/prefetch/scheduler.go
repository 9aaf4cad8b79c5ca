// Package prefetch runs the speculative cache-warming pipeline: lookups
// enqueue their history window, workers ask the predictor for likely next
// queries and admit the confident ones into the user's cache.
package prefetch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
)

// Predictor supplies candidate queries for a history window. Implementations
// must soft-fail: an empty list on any error, never a panic.
type Predictor interface {
	Predict(ctx context.Context, history []string) []querycache.Candidate
}

// Threshold yields the current admission threshold at job execution time.
type Threshold interface {
	Get() float64
}

type job struct {
	user    string
	uc      *querycache.UserContext
	history []string
}

// Scheduler owns the bounded job queue and its worker pool. Trigger never
// blocks: a full queue drops the job and counts it.
type Scheduler struct {
	predictor Predictor
	threshold Threshold
	entryTTL  time.Duration

	jobs    chan job
	enabled atomic.Bool

	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler starts workers goroutines draining a queue of queueSize.
func NewScheduler(p Predictor, threshold Threshold, entryTTL time.Duration, queueSize, workers int) *Scheduler {
	s := &Scheduler{
		predictor: p,
		threshold: threshold,
		entryTTL:  entryTTL,
		jobs:      make(chan job, queueSize),
	}
	s.enabled.Store(true)
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// Trigger enqueues a prefetch job. Fire-and-forget: disabled scheduler or
// full queue means the job is silently dropped (the drop is counted).
func (s *Scheduler) Trigger(user string, uc *querycache.UserContext, history []string) {
	if !s.enabled.Load() || len(history) == 0 {
		return
	}
	select {
	case s.jobs <- job{user: user, uc: uc, history: history}:
		metrics.PrefetchQueueDepth.Set(float64(len(s.jobs)))
	default:
		metrics.PrefetchJobsTotal.WithLabelValues("dropped").Inc()
		logger.Debug("prefetch queue full, dropping job", "user", user)
	}
}

// Depth reports the number of queued jobs.
func (s *Scheduler) Depth() int {
	return len(s.jobs)
}

// SetEnabled toggles job intake at runtime. Queued jobs still drain.
func (s *Scheduler) SetEnabled(v bool) {
	s.enabled.Store(v)
}

// Enabled reports whether job intake is on.
func (s *Scheduler) Enabled() bool {
	return s.enabled.Load()
}

// Stop shuts the intake and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.enabled.Store(false)
		close(s.jobs)
		s.wg.Wait()
	})
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for j := range s.jobs {
		s.run(j)
		metrics.PrefetchQueueDepth.Set(float64(len(s.jobs)))
	}
}

// run executes one job. A panic anywhere in the pipeline is contained to
// the job that raised it.
func (s *Scheduler) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			metrics.PrefetchJobsTotal.WithLabelValues("panic").Inc()
			logger.Error("prefetch job panicked", "user", j.user, "panic", r)
			sentry.CurrentHub().Recover(r)
		}
	}()

	cands := s.predictor.Predict(context.Background(), j.history)

	// The stored prediction list always reflects the latest attempt, an
	// empty answer included.
	j.uc.ReplacePredictions(cands)

	out := j.uc.Prefetch(cands, s.threshold.Get(), s.entryTTL, time.Now())
	metrics.PrefetchJobsTotal.WithLabelValues("completed").Inc()
	metrics.PrefetchCandidates.WithLabelValues("admitted").Add(float64(out.Admitted))
	metrics.PrefetchCandidates.WithLabelValues("below_threshold").Add(float64(out.BelowThreshold))
	metrics.PrefetchCandidates.WithLabelValues("already_cached").Add(float64(out.AlreadyCached))
	if out.Admitted > 0 {
		logger.Debug("prefetch admitted candidates",
			"user", j.user, "admitted", out.Admitted, "candidates", len(cands))
	}
}
