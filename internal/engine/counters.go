package engine

import (
	"sync"
	"sync/atomic"
)

// Counters is the named counter facility stages write into. Counter
// creation takes the write lock once; increments are lock-free.
type Counters struct {
	mu     sync.RWMutex
	counts map[string]*atomic.Int64
}

// NewCounters creates an empty counter set.
func NewCounters() *Counters {
	return &Counters{counts: make(map[string]*atomic.Int64)}
}

// Add increments the named counter by delta, creating it on first use.
func (c *Counters) Add(name string, delta int64) {
	c.mu.RLock()
	counter, ok := c.counts[name]
	c.mu.RUnlock()
	if !ok {
		c.mu.Lock()
		counter, ok = c.counts[name]
		if !ok {
			counter = &atomic.Int64{}
			c.counts[name] = counter
		}
		c.mu.Unlock()
	}
	counter.Add(delta)
}

// Get returns the named counter's value, 0 if it was never written.
func (c *Counters) Get(name string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if counter, ok := c.counts[name]; ok {
		return counter.Load()
	}
	return 0
}

// Snapshot returns a copy of all counters.
func (c *Counters) Snapshot() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int64, len(c.counts))
	for name, counter := range c.counts {
		out[name] = counter.Load()
	}
	return out
}
