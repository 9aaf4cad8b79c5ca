package api

import (
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/admin"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/api/handlers"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/backend"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/cache"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/config"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/integrity"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/middleware"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/prefetch"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
)

// Deps bundles the components the router serves from. Scheduler is nil when
// the predictor is not configured; every other field is required.
type Deps struct {
	Service   *querycache.Service
	Scheduler *prefetch.Scheduler
	Settings  *admin.Store
	Integrity *integrity.Service
	RespCache cache.Cache
	StartedAt time.Time
}

// defaultDeps builds a self-contained stack over the simulated backend. Used
// by tests and by NewRouter(nil).
func defaultDeps(cfg *config.Config) *Deps {
	registry := querycache.NewRegistry(cfg.UserCacheSize, cfg.UserIdleTTL)
	svc := querycache.NewService(registry, &backend.Simulated{Delay: cfg.BackendDelay}, querycache.ServiceConfig{
		TTL:              cfg.CacheTTL,
		HistoryWindow:    cfg.HistoryWindow,
		DefaultThreshold: cfg.PrefetchConfidenceThreshold,
		BackendLatencyMS: cfg.SimBackendLatencyMS,
		CacheLatencyMS:   cfg.SimCacheLatencyMS,
	})
	return &Deps{
		Service:   svc,
		Settings:  admin.NewStore(),
		Integrity: integrity.NewService(svc),
		RespCache: cache.NewMockCache(),
		StartedAt: time.Now(),
	}
}

// NewRouter wires every endpoint with the shared middleware chain. Passing
// nil deps yields a default in-memory stack with no prefetch scheduler.
func NewRouter(deps *Deps) *mux.Router {
	cfg := config.Load()
	if deps == nil {
		deps = defaultDeps(cfg)
	}

	r := mux.NewRouter()

	// Shared middleware, outermost first.
	r.Use(middleware.RequestID)
	r.Use(middleware.RecoverWithSentry)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(&middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.EnableRateLimit {
		limiter := middleware.NewRateLimiter(
			cfg.RateLimitGlobal, cfg.RateLimitGlobalBurst,
			cfg.RateLimitPerIP, cfg.RateLimitPerIPBurst,
		)
		r.Use(limiter.Limit)
	}
	r.Use(middleware.ValidateRequestBody)

	// Admin auth middleware: Bearer token from config, applied per-route.
	adminOnly := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.AdminAPIToken == "" {
				http.Error(w, "admin token not configured", http.StatusServiceUnavailable)
				return
			}
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix || auth[len(prefix):] != cfg.AdminAPIToken {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	svc := deps.Service

	// Lookup path
	r.HandleFunc("/api/search", handlers.Search(svc)).Methods("GET")
	r.HandleFunc("/api/refresh", handlers.ForceRefresh(svc)).Methods("POST")

	// Analytics and predictions. Dashboard payloads grow with cache size, so
	// both read endpoints are compressed; the dashboard also gets ETags for
	// cheap client polling.
	r.Handle("/api/dashboard", middleware.ETag(middleware.Gzip(handlers.Dashboard(svc)))).Methods("GET")
	r.Handle("/api/export", middleware.Gzip(handlers.Export(svc))).Methods("GET")
	r.HandleFunc("/api/predict", handlers.GetPredictions(svc)).Methods("GET")
	r.HandleFunc("/api/set_confidence", handlers.SetConfidence(svc)).Methods("POST")

	// Live dashboard stream
	ws := handlers.NewWebSocketHandler(svc)
	r.HandleFunc("/api/ws", ws.HandleWebSocket).Methods("GET")

	// Operational endpoints
	r.HandleFunc("/api/health", handlers.Health).Methods("GET")
	r.HandleFunc("/api/healthz", handlers.Health).Methods("GET")
	r.HandleFunc("/api/status", handlers.Status(svc, deps.Scheduler, deps.StartedAt)).Methods("GET")

	version := handlers.NewVersionHandler(deps.RespCache)
	r.HandleFunc("/api/version", version.GetVersion).Methods("GET")

	// Admin endpoints
	settings := handlers.NewAdminSettingsHandler(deps.Settings, svc, deps.Scheduler)
	r.Handle("/api/admin/settings", adminOnly(http.HandlerFunc(settings.GetSettings))).Methods("GET")
	r.Handle("/api/admin/settings", adminOnly(http.HandlerFunc(settings.UpdateSettings))).Methods("POST")

	cacheAdmin := handlers.NewCacheAdminHandler(svc)
	r.Handle("/api/admin/cache", adminOnly(http.HandlerFunc(cacheAdmin.PurgeCache))).Methods("DELETE")

	integrityHandler := handlers.NewIntegrityHandler(deps.Integrity)
	r.Handle("/api/admin/integrity", adminOnly(http.HandlerFunc(integrityHandler.RunChecks))).Methods("GET")

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Runtime profiling, admin-gated and audit-logged.
	pprofHandler := func(h http.HandlerFunc) http.Handler {
		return adminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlers.LogPprofAccess(r.Context(), r.URL.Path, r.RemoteAddr)
			h(w, r)
		}))
	}
	r.Handle("/debug/pprof/", pprofHandler(pprof.Index))
	r.Handle("/debug/pprof/cmdline", pprofHandler(pprof.Cmdline))
	r.Handle("/debug/pprof/profile", pprofHandler(pprof.Profile))
	r.Handle("/debug/pprof/symbol", pprofHandler(pprof.Symbol))
	r.Handle("/debug/pprof/trace", pprofHandler(pprof.Trace))

	return r
}
