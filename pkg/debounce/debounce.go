package debounce

import (
	"sync"
	"time"

	"github.com/go-arcade/qaboard/pkg/safe"
)

// Debouncer coalesces bursts of Trigger calls into one run of fn, fired
// after delay has passed without a new trigger.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	pending bool
	stopped bool
}

func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Flush runs fn synchronously if a run is scheduled. It reports whether fn ran.
func (d *Debouncer) Flush() bool {
	if !d.take() {
		return false
	}
	safe.Do("debounce", d.fn)
	return true
}

// Cancel drops a scheduled run without running it and reports whether one
// was scheduled. Callers use it to run the work themselves with their own
// context.
func (d *Debouncer) Cancel() bool {
	return d.take()
}

// Stop cancels any scheduled run; later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire() {
	if !d.take() {
		return
	}
	safe.Do("debounce", d.fn)
}

func (d *Debouncer) take() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pending {
		return false
	}
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return true
}
