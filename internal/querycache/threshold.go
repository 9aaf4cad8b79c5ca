package querycache

import (
	"fmt"
	"math"
	"sync"
)

// ThresholdCell holds the runtime-adjustable prefetch confidence threshold.
// Reads dominate writes, so it carries its own RWMutex rather than riding
// any user lock.
type ThresholdCell struct {
	mu  sync.RWMutex
	val float64
}

// NewThresholdCell creates a cell seeded with the configured default.
func NewThresholdCell(initial float64) *ThresholdCell {
	return &ThresholdCell{val: initial}
}

// Get returns the current threshold.
func (c *ThresholdCell) Get() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val
}

// Set replaces the threshold. Values outside [0, 1] or NaN are rejected and
// the current value is left untouched.
func (c *ThresholdCell) Set(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("confidence threshold must be between 0 and 1, got %v", v)
	}
	c.mu.Lock()
	c.val = v
	c.mu.Unlock()
	return nil
}
