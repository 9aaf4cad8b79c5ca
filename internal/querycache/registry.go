package querycache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/metrics"
)

// Registry maps user IDs to their contexts. Backed by a bounded expirable
// LRU so abandoned users age out instead of accumulating forever; eviction
// discards the whole per-user state.
type Registry struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, *UserContext]
}

// NewRegistry creates a registry bounded to size users, each expiring ttl
// after creation.
func NewRegistry(size int, ttl time.Duration) *Registry {
	onEvict := func(user string, _ *UserContext) {
		metrics.CacheUserEvictions.Inc()
		logger.Debug("user context evicted", "user", user)
	}
	return &Registry{lru: expirable.NewLRU[string, *UserContext](size, onEvict, ttl)}
}

// Get returns the context for user, creating one on first sight. The empty
// user ID maps to "guest".
func (r *Registry) Get(user string) *UserContext {
	if user == "" {
		user = "guest"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if uc, ok := r.lru.Get(user); ok {
		return uc
	}
	uc := NewUserContext()
	r.lru.Add(user, uc)
	return uc
}

// Peek returns the context for user without creating one.
func (r *Registry) Peek(user string) (*UserContext, bool) {
	if user == "" {
		user = "guest"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lru.Peek(user)
}

// Len returns the number of tracked users.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lru.Len()
}

// Users lists the tracked user IDs.
func (r *Registry) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lru.Keys()
}

// Purge drops one user's context. Reports whether it existed.
func (r *Registry) Purge(user string) bool {
	if user == "" {
		user = "guest"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lru.Remove(user)
}

// PurgeAll drops every user context.
func (r *Registry) PurgeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lru.Purge()
}
