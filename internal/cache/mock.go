package cache

import (
	"sync"
	"time"
)

// MockCache is a map-backed Cache for tests and for running the server
// without a real response cache. Unlike the test doubles it replaced, it
// honors TTLs so expiry paths can be exercised without ristretto.
type MockCache struct {
	mu     sync.Mutex
	data   map[string]mockEntry
	hits   uint64
	misses uint64
	added  uint64
}

type mockEntry struct {
	value    []byte
	deadline time.Time // zero means no expiry
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]mockEntry)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	if !ok || (!e.deadline.IsZero() && !time.Now().Before(e.deadline)) {
		delete(m.data, key)
		m.misses++
		return nil, false
	}
	m.hits++
	return e.value, true
}

func (m *MockCache) Set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := mockEntry{value: value}
	if ttl > 0 {
		e.deadline = time.Now().Add(ttl)
	}
	m.data[key] = e
	m.added++
}

func (m *MockCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]mockEntry)
}

func (m *MockCache) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	var bytes int64
	for _, e := range m.data {
		bytes += int64(len(e.value))
	}
	return Stats{
		Hits:   m.hits,
		Misses: m.misses,
		Added:  m.added,
		Bytes:  bytes,
		Items:  int64(len(m.data)),
	}
}
