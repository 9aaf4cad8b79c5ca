// Package server assembles the application: registry, backend, predictor,
// prefetch scheduler, and the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/admin"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/api"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/backend"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/cache"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/config"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/integrity"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/predictor"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/prefetch"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/secrets"
)

// Server owns the assembled components and the HTTP listener.
type Server struct {
	Service   *querycache.Service
	Scheduler *prefetch.Scheduler
	collector *metrics.Collector
	httpSrv   *http.Server
}

// thresholdSource adapts the service's mutable threshold to the scheduler,
// so runtime changes apply to jobs already queued.
type thresholdSource struct {
	svc *querycache.Service
}

func (t thresholdSource) Get() float64 { return t.svc.ConfidenceThreshold() }

// New assembles the full stack from config. The prefetch scheduler only
// starts when the predictor is configured; everything else always runs.
func New(cfg *config.Config) *Server {
	registry := querycache.NewRegistry(cfg.UserCacheSize, cfg.UserIdleTTL)
	svc := querycache.NewService(registry, &backend.Simulated{Delay: cfg.BackendDelay}, querycache.ServiceConfig{
		TTL:              cfg.CacheTTL,
		HistoryWindow:    cfg.HistoryWindow,
		DefaultThreshold: cfg.PrefetchConfidenceThreshold,
		BackendLatencyMS: cfg.SimBackendLatencyMS,
		CacheLatencyMS:   cfg.SimCacheLatencyMS,
	})

	respCache, err := cache.NewLRU(16, 4096, cfg.PredictorCacheTTL)
	var shared cache.Cache
	if err != nil {
		logger.Warn("Response cache unavailable, falling back to no-op cache", "error", err)
		shared = cache.NewMockCache()
	} else {
		shared = respCache
	}

	var sched *prefetch.Scheduler
	if cfg.PredictorEnabled() {
		client := predictor.New(cfg, shared)
		sched = prefetch.NewScheduler(client, thresholdSource{svc: svc},
			cfg.CacheTTL, cfg.PrefetchQueueSize, cfg.PrefetchWorkers)
		svc.SetPrefetcher(sched)
		logger.Info("Prefetch pipeline enabled",
			"model", cfg.PredictorModel,
			"workers", cfg.PrefetchWorkers,
			"api_key", secrets.Mask(cfg.PredictorAPIKey))
	} else {
		logger.Info("Prefetch pipeline disabled (no predictor API key)")
	}

	router := api.NewRouter(&api.Deps{
		Service:   svc,
		Scheduler: sched,
		Settings:  admin.NewStore(),
		Integrity: integrity.NewService(svc),
		RespCache: shared,
		StartedAt: time.Now(),
	})

	var queueSource metrics.QueueSource
	if sched != nil {
		queueSource = sched
	}
	collector := metrics.NewCollector(registry, queueSource, 15*time.Second)

	return &Server{
		Service:   svc,
		Scheduler: sched,
		collector: collector,
		httpSrv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start runs the listener until the context is cancelled, then drains
// in-flight requests and the prefetch queue.
func (s *Server) Start(ctx context.Context) error {
	go s.collector.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", s.httpSrv.Addr)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server")
	err := s.httpSrv.Shutdown(shutdownCtx)
	if s.Scheduler != nil {
		s.Scheduler.Stop()
	}
	s.collector.Stop()
	return err
}
