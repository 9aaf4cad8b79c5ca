package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
)

// Dashboard handles GET /api/dashboard?user=... — the per-user analytics view.
func Dashboard(svc *querycache.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userParam(r)
		d := svc.Dashboard(user)

		metrics.APIRequestsTotal.WithLabelValues("/api/dashboard", "GET", "200").Inc()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(d); err != nil {
			logger.ErrorContext(r.Context(), "Failed to encode dashboard", "error", err, "user", user)
		}
	}
}

// GetPredictions handles GET /api/predict?user=... — the latest candidate list.
func GetPredictions(svc *querycache.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userParam(r)
		preds := svc.Predictions(user)

		metrics.APIRequestsTotal.WithLabelValues("/api/predict", "GET", "200").Inc()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"predictions": preds}); err != nil {
			logger.ErrorContext(r.Context(), "Failed to encode predictions", "error", err, "user", user)
		}
	}
}
