// Package admin holds runtime-mutable service settings: small string
// key/values toggled through the admin API without a restart. Process
// lifetime only; settings reset to defaults on boot.
package admin

import (
	"strconv"
	"strings"
	"sync"
)

// Store is a concurrency-safe settings map.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value for a key or empty string if not set.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set sets the value for a key.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = strings.TrimSpace(value)
}

// All returns a copy of every setting.
func (s *Store) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// GetBool reads a boolean with default if missing or unrecognized.
func (s *Store) GetBool(key string, def bool) bool {
	v := s.Get(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// GetFloat reads a float with default if missing or unparseable.
func (s *Store) GetFloat(key string, def float64) float64 {
	v := s.Get(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
