// Package watch rebuilds and reruns a source file whenever it changes.
package watch

import (
	"slices"
	"sync"
	"time"
)

// MaxPending is the number of distinct pending paths that forces an
// immediate flush instead of waiting for the window to close.
const MaxPending = 100

// Debouncer coalesces bursts of change events (editor autosave, atomic
// rename-on-save) into a single flush of the affected paths.
type Debouncer struct {
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	window  time.Duration
	onFlush func(paths []string)
	stopped bool
}

// NewDebouncer creates a debouncer. onFlush receives the sorted set of paths
// seen since the last flush, once window passes with no new events.
func NewDebouncer(window time.Duration, onFlush func(paths []string)) *Debouncer {
	return &Debouncer{
		pending: make(map[string]struct{}),
		window:  window,
		onFlush: onFlush,
	}
}

// Add records a change to path and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.pending[path] = struct{}{}
	d.stopTimerLocked()

	if len(d.pending) >= MaxPending {
		paths := d.takeLocked()
		d.mu.Unlock()
		d.emit(paths)
		return
	}

	// A timer that already fired may still run flush; it finds nothing pending.
	d.timer = time.AfterFunc(d.window, d.FlushNow)
	d.mu.Unlock()
}

// FlushNow delivers pending paths immediately.
func (d *Debouncer) FlushNow() {
	d.mu.Lock()
	d.stopTimerLocked()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	paths := d.takeLocked()
	d.mu.Unlock()

	d.emit(paths)
}

// Stop stops the debouncer and discards pending paths.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.stopTimerLocked()
	d.pending = make(map[string]struct{})
}

// PendingCount returns the number of paths waiting to be flushed.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Debouncer) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// takeLocked returns and clears the pending set. Caller must hold d.mu.
func (d *Debouncer) takeLocked() []string {
	if len(d.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	d.pending = make(map[string]struct{})
	return paths
}

// emit calls the handler outside the lock.
func (d *Debouncer) emit(paths []string) {
	if len(paths) == 0 || d.onFlush == nil {
		return
	}
	d.onFlush(paths)
}
