package watcher

import (
	"sync"
	"time"
)

// Arrival is a bucket file that has stopped changing.
type Arrival struct {
	Path      string
	FirstSeen time.Time
}

// Coalescer holds file activity until a path has been quiet for the
// settle window, so uploads still being written are reported once.
type Coalescer struct {
	settle time.Duration

	mu      sync.Mutex
	pending map[string]*pendingArrival
	events  chan Arrival
	stopCh  chan struct{}
	stopped bool
}

type pendingArrival struct {
	arrival Arrival
	timer   *time.Timer
}

// NewCoalescer creates a Coalescer with the given settle window.
func NewCoalescer(settle time.Duration) *Coalescer {
	return &Coalescer{
		settle:  settle,
		pending: make(map[string]*pendingArrival),
		events:  make(chan Arrival, 256),
		stopCh:  make(chan struct{}),
	}
}

// Touch records activity on path and restarts its settle timer.
func (c *Coalescer) Touch(path string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	if pa, ok := c.pending[path]; ok {
		pa.timer.Stop()
		pa.timer = time.AfterFunc(c.settle, func() { c.emit(path) })
		return
	}

	pa := &pendingArrival{arrival: Arrival{Path: path, FirstSeen: at}}
	pa.timer = time.AfterFunc(c.settle, func() { c.emit(path) })
	c.pending[path] = pa
}

// Forget drops pending activity for path, such as a file removed or
// renamed away before it settled.
func (c *Coalescer) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pa, ok := c.pending[path]; ok {
		pa.timer.Stop()
		delete(c.pending, path)
	}
}

// Events returns settled arrivals.
func (c *Coalescer) Events() <-chan Arrival {
	return c.events
}

// Stop discards pending activity and closes the events channel.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	for path, pa := range c.pending {
		pa.timer.Stop()
		delete(c.pending, path)
	}
	close(c.stopCh)
	close(c.events)
	c.mu.Unlock()
}

// emit sends a settled arrival. Timers that fire after Forget or Stop find
// nothing pending and return.
func (c *Coalescer) emit(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pa, ok := c.pending[path]
	if !ok || c.stopped {
		return
	}
	delete(c.pending, path)

	select {
	case c.events <- pa.arrival:
	default:
		// Dropped. The file stays in the bucket for the next pass.
	}
}

// PendingCount returns the number of unsettled paths.
func (c *Coalescer) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
