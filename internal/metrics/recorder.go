package metrics

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Recorder delivers metrics to a Ring off the request path. Record is
// fire-and-forget: it never blocks, and silently drops when the
// delivery queue is full or the Recorder is closed.
type Recorder struct {
	ring  *Ring
	queue chan Metric
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewRecorder creates a Recorder draining into ring and starts its
// delivery goroutine.
func NewRecorder(ring *Ring) *Recorder {
	r := &Recorder{
		ring:  ring,
		queue: make(chan Metric, 256),
		done:  make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *Recorder) drain() {
	defer close(r.done)
	for m := range r.queue {
		r.ring.Record(m)
	}
}

// Record queues a metric for delivery. Drops on a full queue, and on a
// closed Recorder so late in-flight callers degrade instead of panicking.
func (r *Recorder) Record(m Metric) {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}

	// The send stays under the mutex so Close cannot close the queue
	// between the check and the send. It never blocks: the default
	// branch drops instead.
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		zap.L().Debug("metrics: recorder closed, dropping", zap.String("operation", m.Operation))
		return
	}
	select {
	case r.queue <- m:
	default:
		zap.L().Debug("metrics: queue full, dropping", zap.String("operation", m.Operation))
	}
}

// Observe times fn and records its outcome under the given operation.
func (r *Recorder) Observe(operation string, fn func() bool) {
	start := time.Now()
	ok := fn()
	r.Record(Metric{
		Operation: operation,
		Duration:  time.Since(start),
		Timestamp: start,
		Success:   ok,
	})
}

// Close stops the delivery goroutine after flushing queued metrics.
// Records arriving after Close are dropped. Safe to call twice.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()
	<-r.done
}

// Snapshot exposes the underlying ring's contents oldest-first.
func (r *Recorder) Snapshot() []Metric {
	return r.ring.Snapshot()
}
