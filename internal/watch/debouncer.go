package watch

import (
	"sort"
	"sync"
	"time"
)

// Debouncer collects changed paths and releases them as one sorted batch
// once no new path has arrived for the configured duration.
type Debouncer struct {
	duration time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	pending  map[string]struct{}
	out      chan []string
	stop     chan struct{}
}

// NewDebouncer creates a debouncer. Batches are read from C.
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		pending:  make(map[string]struct{}),
		out:      make(chan []string),
		stop:     make(chan struct{}),
	}
}

// C delivers debounced batches.
func (d *Debouncer) C() <-chan []string {
	return d.out
}

// Add records a path and restarts the quiet period.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(d.pending))
	for p := range d.pending {
		batch = append(batch, p)
	}
	d.pending = make(map[string]struct{})
	d.mu.Unlock()

	sort.Strings(batch)
	select {
	case d.out <- batch:
	case <-d.stop:
	}
}

// Stop cancels a pending batch. It is safe to call more than once.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	select {
	case <-d.stop:
	default:
		close(d.stop)
	}
}
