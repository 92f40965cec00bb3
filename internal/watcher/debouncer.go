package watcher

import (
	"sync"
	"time"
)

// debouncer collects events and flushes them after a quiet interval.
// Multiple events for the same path within the window collapse into the
// latest one.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	pending  map[string]Event
	timer    *time.Timer
	out      chan []Event
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		pending:  make(map[string]Event),
		out:      make(chan []Event, 16),
	}
}

func (d *debouncer) output() <-chan []Event {
	return d.out
}

func (d *debouncer) add(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[ev.Path] = ev

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) == 0 {
		return
	}
	batch := make([]Event, 0, len(d.pending))
	for _, ev := range d.pending {
		batch = append(batch, ev)
	}
	d.pending = make(map[string]Event)

	select {
	case d.out <- batch:
	default:
		// Drop the batch rather than block the timer goroutine.
	}
}
