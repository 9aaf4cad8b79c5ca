package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/apierr"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/tracing"
)

// ForceRefresh handles POST /api/refresh?query=...&user=... — unconditional
// backend overwrite of one cache entry.
func ForceRefresh(svc *querycache.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartSpan(r.Context(), "handlers.ForceRefresh")
		defer span.End()

		query := r.URL.Query().Get("query")
		if err := sanitizer.ValidateQuery(query); err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.SearchInvalidQuery(err.Error()))
			return
		}
		user := userParam(r)
		if err := sanitizer.ValidateUserID(user); err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidValue("user", err.Error()))
			return
		}

		span.SetAttributes(
			attribute.String("search_query", query),
			attribute.String("user", user),
		)

		result, err := svc.ForceRefresh(ctx, user, query)
		if err != nil {
			if errors.Is(err, querycache.ErrEmptyQuery) {
				apierr.WriteErrorWithContext(w, r, apierr.SearchInvalidQuery("query must not be empty"))
				return
			}
			logger.ErrorContext(ctx, "Refresh failed", "error", err, "user", user, "query", query)
			apierr.WriteErrorWithContext(w, r, apierr.SearchFailed("Failed to refresh query"))
			return
		}

		metrics.APIRequestsTotal.WithLabelValues("/api/refresh", "POST", "200").Inc()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result":  result,
		}); err != nil {
			logger.ErrorContext(ctx, "Failed to encode response", "error", err)
		}
	}
}
