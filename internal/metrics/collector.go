package metrics

import (
	"context"
	"time"
)

// UserSource reports how many user contexts are currently tracked.
type UserSource interface {
	Len() int
}

// QueueSource reports the current depth of the prefetch queue.
type QueueSource interface {
	Depth() int
}

// Collector periodically publishes registry-wide gauges. Counter-style
// metrics are incremented inline at their call sites; the collector only
// covers values that have to be sampled.
type Collector struct {
	users    UserSource
	queue    QueueSource
	interval time.Duration
	stop     chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(users UserSource, queue QueueSource, interval time.Duration) *Collector {
	return &Collector{
		users:    users,
		queue:    queue,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins the metrics collection loop.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the metrics collector.
func (c *Collector) Stop() {
	close(c.stop)
}

func (c *Collector) collect() {
	if c.users != nil {
		CacheUsersActive.Set(float64(c.users.Len()))
	}
	if c.queue != nil {
		PrefetchQueueDepth.Set(float64(c.queue.Depth()))
	}
}
