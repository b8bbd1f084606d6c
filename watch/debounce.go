package watch

import (
	"sync"
	"time"
)

// DefaultWait is the debounce window used when none is given.
const DefaultWait = 500 * time.Millisecond

// Debouncer collapses a burst of events into a single call of a handler.
// A burst is a run of events each arriving within the wait window of the one before.
//
// With the trailing policy (the default)
// the handler runs once, wait after the last event of the burst,
// with that last event.
// With the leading policy
// the handler runs immediately with the first event of the burst
// and the rest of the burst is dropped.
//
// Only the most recent event is kept.
type Debouncer struct {
	wait    time.Duration
	leading bool
	f       func(Event)

	mu    sync.Mutex
	timer *time.Timer
	last  Event
	gen   int // incremented on every Notify and Cancel; stale timers compare against it
}

// NewDebouncer produces a Debouncer calling f.
// A wait of zero or less means DefaultWait.
func NewDebouncer(wait time.Duration, leading bool, f func(Event)) *Debouncer {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Debouncer{wait: wait, leading: leading, f: f}
}

// Notify records an event, restarting the wait window.
// Under the leading policy,
// if no burst is in progress,
// the handler is called before Notify returns.
func (d *Debouncer) Notify(ev Event) {
	d.mu.Lock()
	callNow := d.leading && d.timer == nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.last = ev
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
	d.mu.Unlock()

	if callNow {
		d.f(ev)
	}
}

func (d *Debouncer) fire(gen int) {
	d.mu.Lock()
	if gen != d.gen {
		// Superseded by a later Notify, or canceled.
		d.mu.Unlock()
		return
	}
	d.timer = nil
	ev := d.last
	d.mu.Unlock()

	if !d.leading {
		d.f(ev)
	}
}

// Cancel discards any pending call.
// The Debouncer may be used again afterwards.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
