package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
)

type confidenceRequest struct {
	Confidence *float64 `json:"confidence"`
}

// SetConfidence handles POST /api/set_confidence with body {"confidence": x}.
// The response keeps the legacy success/error envelope rather than the
// standard error codes; dashboards consume it directly.
func SetConfidence(svc *querycache.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req confidenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Confidence == nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   "body must be JSON with a numeric confidence field",
			})
			return
		}

		if err := svc.SetConfidenceThreshold(*req.Confidence); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		metrics.APIRequestsTotal.WithLabelValues("/api/set_confidence", "POST", "200").Inc()
		logger.InfoContext(r.Context(), "confidence threshold set via API", "confidence", *req.Confidence)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"confidence": *req.Confidence,
		})
	}
}
