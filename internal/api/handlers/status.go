package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/config"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/prefetch"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/querycache"
)

type prefetchStatus struct {
	Enabled    bool `json:"enabled"`
	QueueDepth int  `json:"queue_depth"`
	QueueSize  int  `json:"queue_size"`
	Workers    int  `json:"workers"`
}

type statusResponse struct {
	Status        string          `json:"status"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Users         int             `json:"users"`
	Prefetch      *prefetchStatus `json:"prefetch,omitempty"`
}

// Status reports process health for operators: uptime, tracked users and the
// prefetch pipeline state. sched is nil when the predictor is not configured.
func Status(svc *querycache.Service, sched *prefetch.Scheduler, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := config.Load()

		resp := statusResponse{
			Status:        "ok",
			UptimeSeconds: int64(time.Since(startedAt).Seconds()),
			Users:         svc.Registry().Len(),
		}
		if sched != nil {
			resp.Prefetch = &prefetchStatus{
				Enabled:    sched.Enabled(),
				QueueDepth: sched.Depth(),
				QueueSize:  cfg.PrefetchQueueSize,
				Workers:    cfg.PrefetchWorkers,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
