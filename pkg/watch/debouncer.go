package watch

import (
	"sort"
	"sync"
	"time"
)

// debouncer collects names until the window passes without new events, then
// flushes them as one sorted batch.
type debouncer struct {
	window   time.Duration
	maxBatch int
	names    map[string]struct{}
	mu       sync.Mutex
	timer    *time.Timer
	onFlush  func([]string)
	stopped  bool
}

func newDebouncer(window time.Duration, maxBatch int, onFlush func([]string)) *debouncer {
	if maxBatch <= 0 {
		maxBatch = 1
	}
	return &debouncer{
		window:   window,
		maxBatch: maxBatch,
		names:    make(map[string]struct{}),
		onFlush:  onFlush,
	}
}

func (d *debouncer) add(name string) {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.names[name] = struct{}{}

	if len(d.names) >= d.maxBatch {
		d.flushLocked()
		return
	}

	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if !d.stopped {
			d.flushLocked()
		} else {
			d.mu.Unlock()
		}
	})

	d.mu.Unlock()
}

// flushLocked releases d.mu before calling onFlush.
func (d *debouncer) flushLocked() {
	names := make([]string, 0, len(d.names))
	for name := range d.names {
		names = append(names, name)
	}
	sort.Strings(names)

	d.names = make(map[string]struct{})

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.mu.Unlock()

	if len(names) > 0 && d.onFlush != nil {
		d.onFlush(names)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if len(d.names) > 0 {
		d.flushLocked()
	} else {
		d.mu.Unlock()
	}
}
