// Package busy tracks in-flight work for the global loading indicator.
package busy

import "sync"

// Counter is a reference count floored at zero; busy iff count > 0.
type Counter struct {
	mu       sync.Mutex
	n        int
	watchers []func(bool)
}

// New returns an idle counter.
func New() *Counter { return &Counter{} }

// OnChange registers fn to be called when the busy state flips.
func (c *Counter) OnChange(fn func(busy bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, fn)
}

// Show increments the count.
func (c *Counter) Show() {
	c.mu.Lock()
	c.n++
	flipped := c.n == 1
	watchers := c.watchers
	c.mu.Unlock()
	if flipped {
		for _, w := range watchers {
			w(true)
		}
	}
}

// Hide decrements the count; unbalanced calls stop at zero.
func (c *Counter) Hide() {
	c.mu.Lock()
	if c.n == 0 {
		c.mu.Unlock()
		return
	}
	c.n--
	flipped := c.n == 0
	watchers := c.watchers
	c.mu.Unlock()
	if flipped {
		for _, w := range watchers {
			w(false)
		}
	}
}

// Busy reports whether any work is in flight.
func (c *Counter) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n > 0
}

// Count returns the current count.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
