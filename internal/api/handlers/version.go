package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/apierr"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/cache"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
)

// Build metadata, overridden at link time via -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// VersionHandler serves build metadata with a short-lived cached response.
type VersionHandler struct {
	cache cache.Cache
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(c cache.Cache) *VersionHandler {
	return &VersionHandler{cache: c}
}

// VersionResponse represents the running build
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// GetVersion returns the running build metadata
// GET /api/version
func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	// Try cache first
	cacheKey := "version:current"
	if cached, found := h.cache.Get(cacheKey); found {
		metrics.APICacheHits.WithLabelValues("version").Inc()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(cached)
		return
	}
	metrics.APICacheMisses.WithLabelValues("version").Inc()

	response := VersionResponse{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}

	data, err := json.Marshal(response)
	if err != nil {
		logger.Error("Failed to marshal version response", "error", err)
		apierr.WriteError(w, apierr.SystemInternal("Failed to serialize response"))
		return
	}

	h.cache.Set(cacheKey, data, 60*time.Second)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(data)
}
