package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

var processStart = time.Now()

// Health reports liveness plus process uptime. Load balancer probes hit this
// frequently, so it touches no stores and holds no locks.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(processStart).Seconds()),
	})
}
