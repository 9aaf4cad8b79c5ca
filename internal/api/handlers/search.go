package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/apierr"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/middleware"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/tracing"
)

var sanitizer = &middleware.SanitizeInput{}

// userParam extracts the user query parameter, defaulting to guest.
func userParam(r *http.Request) string {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		return "guest"
	}
	return user
}

// Search handles GET /api/search?query=...&user=... — the cache lookup path.
func Search(svc *querycache.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartSpan(r.Context(), "handlers.Search")
		defer span.End()

		start := time.Now()
		defer func() {
			metrics.APIRequestDuration.WithLabelValues("/api/search", "GET").Observe(time.Since(start).Seconds())
		}()

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

		result, err := svc.Search(ctx, user, query)
		if err != nil {
			if errors.Is(err, querycache.ErrEmptyQuery) {
				apierr.WriteErrorWithContext(w, r, apierr.SearchInvalidQuery("query must not be empty"))
				return
			}
			logger.ErrorContext(ctx, "Search failed", "error", err, "user", user, "query", query)
			apierr.WriteErrorWithContext(w, r, apierr.SearchFailed("Failed to resolve query"))
			return
		}

		metrics.APIRequestsTotal.WithLabelValues("/api/search", "GET", "200").Inc()
		span.SetAttributes(attribute.String("source", string(result.Source)))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"result": result.Result,
			"source": result.Source,
		}); err != nil {
			logger.ErrorContext(ctx, "Failed to encode response", "error", err)
		}
	}
}
