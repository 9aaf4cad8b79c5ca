package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/apierr"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/integrity"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
)

// IntegrityHandler exposes on-demand consistency checks over the cache state.
type IntegrityHandler struct {
	svc *integrity.Service
}

// NewIntegrityHandler creates a new integrity handler.
func NewIntegrityHandler(svc *integrity.Service) *IntegrityHandler {
	return &IntegrityHandler{svc: svc}
}

// RunChecks runs every integrity check and reports the results alongside
// aggregate cache stats.
// GET /api/admin/integrity
func (h *IntegrityHandler) RunChecks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results, err := h.svc.CheckAll(ctx)
	if err != nil {
		logger.Error("Integrity checks failed", "error", err)
		apierr.WriteErrorWithContext(w, r, apierr.SystemInternal("Failed to run integrity checks"))
		return
	}

	stats, err := h.svc.GetStats(ctx)
	if err != nil {
		logger.Error("Failed to collect cache stats", "error", err)
		apierr.WriteErrorWithContext(w, r, apierr.SystemInternal("Failed to collect cache stats"))
		return
	}

	issues := int64(0)
	for _, res := range results {
		if res.HasIssues {
			issues += res.IssueCount
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"checks":       results,
		"stats":        stats,
		"total_issues": issues,
	})
}
