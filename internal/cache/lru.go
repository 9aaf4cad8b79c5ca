package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// LRUCache bounds the response cache by total byte cost using ristretto.
// Predictor responses dominate the contents, so cost is charged per stored
// byte rather than per entry.
type LRUCache struct {
	inner      *ristretto.Cache
	defaultTTL time.Duration
}

type entry struct {
	value    []byte
	deadline int64 // unix nanos; past this the entry reads as a miss
}

// NewLRU builds a cache holding at most maxSizeMB megabytes across at most
// maxEntries entries. Entries written with a zero TTL expire after defaultTTL.
func NewLRU(maxSizeMB, maxEntries int, defaultTTL time.Duration) (*LRUCache, error) {
	// Ristretto wants ~10x counters per tracked entry for its admission
	// sketch to be useful.
	counters := int64(maxEntries) * 10
	if counters < 1000 {
		counters = 1000
	}

	inner, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: counters,
		MaxCost:     int64(maxSizeMB) << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &LRUCache{inner: inner, defaultTTL: defaultTTL}, nil
}

func (c *LRUCache) Get(key string) ([]byte, bool) {
	raw, found := c.inner.Get(key)
	if !found {
		return nil, false
	}
	e, ok := raw.(*entry)
	if !ok {
		c.inner.Del(key)
		return nil, false
	}
	if time.Now().UnixNano() >= e.deadline {
		c.inner.Del(key)
		return nil, false
	}
	return e.value, true
}

func (c *LRUCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	e := &entry{
		value:    value,
		deadline: time.Now().Add(ttl).UnixNano(),
	}
	// Charge the key alongside the payload so many small entries still
	// account for something.
	cost := int64(len(value) + len(key))
	_ = c.inner.Set(key, e, cost)
	// Callers treat Set as synchronous; flush ristretto's set buffers so a
	// Get immediately after returns the value.
	c.inner.Wait()
}

func (c *LRUCache) Delete(key string) {
	c.inner.Del(key)
}

func (c *LRUCache) Clear() {
	c.inner.Clear()
}

func (c *LRUCache) Stats() Stats {
	m := c.inner.Metrics
	return Stats{
		Hits:    m.Hits(),
		Misses:  m.Misses(),
		Added:   m.KeysAdded(),
		Evicted: m.KeysEvicted(),
		Bytes:   int64(m.CostAdded() - m.CostEvicted()),
		Items:   int64(m.KeysAdded() - m.KeysEvicted()),
	}
}

// Close releases ristretto's internal goroutines.
func (c *LRUCache) Close() {
	c.inner.Close()
}
