package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache engine metrics
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Total number of cache lookups by resolved source",
		},
		[]string{"source"}, // source: backend, cache, predicted, fuzzy_cache
	)

	CacheRefreshesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_refreshes_total",
			Help: "Total number of forced cache refreshes",
		},
	)

	CacheUsersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_users_active",
			Help: "Number of user contexts currently tracked",
		},
	)

	CacheUserEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_user_evictions_total",
			Help: "Total number of user contexts evicted from the registry",
		},
	)

	// Prefetch pipeline metrics
	PrefetchJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefetch_jobs_total",
			Help: "Total number of prefetch jobs by outcome",
		},
		[]string{"status"}, // status: completed, dropped, panic
	)

	PrefetchCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefetch_candidates_total",
			Help: "Total number of prediction candidates by admission decision",
		},
		[]string{"decision"}, // decision: admitted, below_threshold, already_cached
	)

	PrefetchQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prefetch_queue_depth",
			Help: "Number of prefetch jobs waiting in the queue",
		},
	)

	// Predictor client metrics
	PredictorRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictor_requests_total",
			Help: "Total number of prediction service calls by outcome",
		},
		[]string{"status"}, // status: success, error, cached
	)

	PredictorRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "predictor_request_duration_seconds",
			Help:    "Duration of prediction service calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	PredictorParseResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictor_parse_results_total",
			Help: "Total number of predictor response parse outcomes",
		},
		[]string{"outcome"}, // outcome: ok, empty, no_array, malformed
	)

	PredictorRateLimitWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "predictor_rate_limit_waits_total",
			Help: "Total number of times an outbound predictor call waited for the rate limiter",
		},
	)

	// Outbound HTTP client metrics
	HTTPClientRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_client_requests_total",
			Help: "Total number of outbound HTTP requests by outcome",
		},
		[]string{"status"}, // status: success, retry, error
	)

	HTTPClientRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_client_retries_total",
			Help: "Total number of outbound HTTP request retries",
		},
	)

	HTTPClientRetryAfterWaits = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "http_client_retry_after_wait_seconds",
			Help:    "Duration of Retry-After waits in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"component"},
	)

	CircuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_trips_total",
			Help: "Total number of circuit breaker trips",
		},
		[]string{"component"},
	)

	// Response cache metrics (serialized API payloads, not the query cache)
	APICacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"endpoint"},
	)

	APICacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"endpoint"},
	)

	// API request metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"endpoint", "method"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	// WebSocket metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)

	WebSocketMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent to clients",
		},
	)
)
