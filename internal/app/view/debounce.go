package view

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events into a single callback: each
// Trigger cancels any pending timer and restarts it, so only the last
// event in a burst fires. It is a cancel-and-restart timer, not a rate
// limiter.
//
// Used for free-text search input (~300ms) and scroll-triggered
// pagination checks (~100ms).
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given settle delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the settle delay, cancelling any pending
// invocation first.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending invocation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
