package handlers

import (
	"context"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
)

// LogPprofAccess audit-logs hits on the runtime profiling endpoints. Heap
// profiles can expose cached query text, so every access is recorded.
func LogPprofAccess(ctx context.Context, path, remoteAddr string) {
	logger.WarnContext(ctx, "pprof endpoint accessed",
		"endpoint", path,
		"remote_addr", remoteAddr,
		"audit", true)
}
