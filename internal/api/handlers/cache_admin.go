package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/apierr"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
)

// CacheAdminHandler handles cache administration endpoints.
type CacheAdminHandler struct {
	svc *querycache.Service
}

// NewCacheAdminHandler creates a new cache admin handler.
func NewCacheAdminHandler(svc *querycache.Service) *CacheAdminHandler {
	return &CacheAdminHandler{svc: svc}
}

// PurgeCache evicts cached state. With ?user= it drops that one user's
// context; without it everything goes.
// DELETE /api/admin/cache?user=...
func (h *CacheAdminHandler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))

	w.Header().Set("Content-Type", "application/json")

	if user == "" {
		h.svc.PurgeAll()
		logger.Info("Purged all user caches", "by", "admin")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"message": "All user caches purged",
		})
		return
	}

	if err := sanitizer.ValidateUserID(user); err != nil {
		apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidValue("user", err.Error()))
		return
	}
	if !h.svc.PurgeUser(user) {
		apierr.WriteErrorWithContext(w, r, apierr.ResourceNotFound("user"))
		return
	}

	logger.Info("Purged user cache", "user", user)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"message": "User cache purged",
		"user":    user,
	})
}
