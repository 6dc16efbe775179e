// Package metrics records per-stage timing and outcome into a bounded
// in-process ring buffer. The buffer is the only pipeline state that
// outlives a single request.
package metrics

import (
	"sync"
	"time"
)

// Metric is a single recorded observation. Fields is restricted to
// integer counts (result counts, provider tallies); anything richer
// belongs in the Detail string.
type Metric struct {
	Operation string         `json:"operation"`
	Duration  time.Duration  `json:"duration"`
	Timestamp time.Time      `json:"timestamp"`
	Success   bool           `json:"success"`
	Fields    map[string]int `json:"fields,omitempty"`
	Detail    string         `json:"detail,omitempty"`
}

// Ring is a fixed-capacity, oldest-evicted metric buffer safe for
// concurrent use.
type Ring struct {
	mu   sync.Mutex
	buf  []Metric
	next int
	size int
}

// NewRing creates a ring holding at most capacity metrics.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{buf: make([]Metric, capacity)}
}

// Record appends a metric, evicting the oldest entry when full.
func (r *Ring) Record(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.next] = m
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// Len returns the number of metrics currently held.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Snapshot returns the held metrics oldest-first.
func (r *Ring) Snapshot() []Metric {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Metric, 0, r.size)
	start := r.next - r.size
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}
