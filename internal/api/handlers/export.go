package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/apierr"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/tracing"
)

// Export handles GET /api/export?format=json|csv&user=... for exporting one
// user's raw cache state. Stale rows are included on purpose: the dump is a
// debugging artifact, not the live view.
func Export(svc *querycache.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracing.StartSpan(r.Context(), "handlers.Export")
		defer span.End()

		// Parse format parameter (json or csv, default json)
		format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
		if format == "" {
			format = "json"
		}
		if format != "json" && format != "csv" {
			apierr.WriteErrorWithContext(w, r, apierr.ExportInvalidFormat(format))
			return
		}
		user := userParam(r)
		if err := sanitizer.ValidateUserID(user); err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidValue("user", err.Error()))
			return
		}

		span.SetAttributes(
			attribute.String("format", format),
			attribute.String("user", user),
		)

		data := svc.Export(user)

		metrics.APIRequestsTotal.WithLabelValues("/api/export", "GET", "200").Inc()
		span.SetAttributes(attribute.Int("rows_count", len(data.Cache)))

		if format == "csv" {
			exportCSV(w, data)
		} else {
			exportJSON(w, data)
		}
	}
}

func exportJSON(w http.ResponseWriter, data querycache.ExportData) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode export", "error", err)
	}
}

func exportCSV(w http.ResponseWriter, data querycache.ExportData) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=cachecraft_export.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"query", "source", "timestamp", "expiry"})

	// Stable row order for diffable exports
	keys := make([]string, 0, len(data.Cache))
	for k := range data.Cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		e := data.Cache[k]
		record := []string{
			k,
			string(e.Source),
			strconv.FormatInt(e.CreatedAt.Unix(), 10),
			strconv.FormatInt(int64(e.TTL.Seconds()), 10),
		}
		if err := writer.Write(record); err != nil {
			logger.Error("Failed to write CSV row", "error", err)
			break
		}
	}
}
