package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/admin"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/prefetch"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
)

type AdminSettingsHandler struct {
	store *admin.Store
	svc   *querycache.Service
	sched *prefetch.Scheduler
}

// NewAdminSettingsHandler wires the settings store to the components the
// settings control. sched may be nil when the predictor is not configured.
func NewAdminSettingsHandler(store *admin.Store, svc *querycache.Service, sched *prefetch.Scheduler) *AdminSettingsHandler {
	return &AdminSettingsHandler{store: store, svc: svc, sched: sched}
}

// SettingsResponse represents all configurable settings
type SettingsResponse struct {
	PrefetchEnabled     bool    `json:"prefetch_enabled"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	RateLimitGlobal     float64 `json:"rate_limit_global"`
	RateLimitPerIP      float64 `json:"rate_limit_per_ip"`
}

// GetSettings returns all configurable settings
func (h *AdminSettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	prefetchEnabled := h.sched != nil && h.sched.Enabled()

	response := SettingsResponse{
		PrefetchEnabled:     prefetchEnabled,
		ConfidenceThreshold: h.svc.ConfidenceThreshold(),
		RateLimitGlobal:     h.store.GetFloat("rate_limit_global", 100.0),
		RateLimitPerIP:      h.store.GetFloat("rate_limit_per_ip", 10.0),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// UpdateSettings updates configurable settings
func (h *AdminSettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	changes := make(map[string]interface{})

	if val, ok := req["prefetch_enabled"].(bool); ok {
		h.store.Set("prefetch_enabled", boolToString(val))
		if h.sched != nil {
			h.sched.SetEnabled(val)
		}
		changes["prefetch_enabled"] = val
	}

	if val, ok := req["confidence_threshold"].(float64); ok {
		if err := h.svc.SetConfidenceThreshold(val); err != nil {
			http.Error(w, "Failed to update confidence_threshold: "+err.Error(), http.StatusBadRequest)
			return
		}
		h.store.Set("confidence_threshold", floatToString(val))
		changes["confidence_threshold"] = val
	}

	if val, ok := req["rate_limit_global"].(float64); ok && val > 0 {
		h.store.Set("rate_limit_global", floatToString(val))
		changes["rate_limit_global"] = val
	}
	if val, ok := req["rate_limit_per_ip"].(float64); ok && val > 0 {
		h.store.Set("rate_limit_per_ip", floatToString(val))
		changes["rate_limit_per_ip"] = val
	}

	if len(changes) > 0 {
		logger.Info("Admin settings updated", "changes", changes)
	}

	// Return updated settings
	h.GetSettings(w, r)
}

// Helper functions
func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func floatToString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
