package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/apierr"
)

// Per-IP limiters live in a bounded expirable LRU, so an IP scan cannot grow
// the map without limit. An entry ages out after its TTL measured from
// insertion, which resets that IP's burst allowance; at these TTLs that is
// harmless.
const (
	perIPCapacity = 4096
	perIPTTL      = 3 * time.Minute
)

// RateLimiter enforces a global request budget plus a per-client-IP budget.
// The global limit protects the predictor upstream and the per-user stores;
// the per-IP limit keeps one client from consuming the global budget.
type RateLimiter struct {
	global  *rate.Limiter
	ipRate  rate.Limit
	ipBurst int

	mu    sync.Mutex
	perIP *expirable.LRU[string, *rate.Limiter]
}

// NewRateLimiter builds a limiter. Rates are requests per second.
func NewRateLimiter(globalRate float64, globalBurst int, ipRate float64, ipBurst int) *RateLimiter {
	return &RateLimiter{
		global:  rate.NewLimiter(rate.Limit(globalRate), globalBurst),
		ipRate:  rate.Limit(ipRate),
		ipBurst: ipBurst,
		perIP:   expirable.NewLRU[string, *rate.Limiter](perIPCapacity, nil, perIPTTL),
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if lim, ok := rl.perIP.Get(ip); ok {
		return lim
	}
	lim := rate.NewLimiter(rl.ipRate, rl.ipBurst)
	rl.perIP.Add(ip, lim)
	return lim
}

// Limit wraps next with both checks. Rejections are JSON API errors with a
// Retry-After hint.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.global.Allow() {
			w.Header().Set("Retry-After", "1")
			apierr.WriteErrorWithContext(w, r, apierr.RateLimitGlobal())
			return
		}
		if !rl.limiterFor(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			apierr.WriteErrorWithContext(w, r, apierr.RateLimitIP())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the originating client address, trusting the usual proxy
// headers before falling back to the socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
