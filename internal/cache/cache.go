// Package cache provides a byte-oriented response cache shared by the
// predictor client and the version endpoint. Entries carry their own TTL so
// upstream responses age out independently of the per-user query store.
package cache

import "time"

// Cache stores serialized responses under string keys.
type Cache interface {
	// Get returns the cached bytes for key, or false if the key is absent
	// or its TTL has lapsed.
	Get(key string) ([]byte, bool)

	// Set stores value under key. A ttl of 0 falls back to the cache's
	// default TTL.
	Set(key string, value []byte, ttl time.Duration)

	// Delete removes key if present.
	Delete(key string)

	// Clear drops every entry.
	Clear()

	// Stats reports cumulative counters for the cache.
	Stats() Stats
}

// Stats holds cumulative cache counters. Hits and Misses cover Get calls;
// Bytes and Items approximate the live contents.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Added   uint64
	Evicted uint64
	Bytes   int64
	Items   int64
}
