package search

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Budget enforces rolling per-minute and per-month call budgets for a
// provider. Safe for concurrent use; shared across requests.
type Budget struct {
	mu sync.Mutex

	perMinute int
	perMonth  int

	minuteCalls []time.Time
	monthCount  int
	monthAnchor time.Time

	now func() time.Time
}

// NewBudget creates a Budget. A zero limit disables that window.
func NewBudget(perMinute, perMonth int) *Budget {
	return &Budget{
		perMinute: perMinute,
		perMonth:  perMonth,
		now:       time.Now,
	}
}

// withNow fixes the clock for testing.
func (b *Budget) withNow(now func() time.Time) *Budget {
	b.now = now
	return b
}

// Allow records a call attempt and reports whether it fits within both
// budgets. Over-budget attempts are not recorded.
func (b *Budget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()

	// Prune calls older than the rolling minute.
	cutoff := now.Add(-time.Minute)
	kept := b.minuteCalls[:0]
	for _, t := range b.minuteCalls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.minuteCalls = kept

	// Reset the month counter on calendar-month rollover.
	if b.monthAnchor.IsZero() ||
		now.Month() != b.monthAnchor.Month() || now.Year() != b.monthAnchor.Year() {
		b.monthAnchor = now
		b.monthCount = 0
	}

	if b.perMinute > 0 && len(b.minuteCalls) >= b.perMinute {
		return false
	}
	if b.perMonth > 0 && b.monthCount >= b.perMonth {
		return false
	}

	b.minuteCalls = append(b.minuteCalls, now)
	b.monthCount++
	return true
}

// Limits bundles the shared per-provider admission state: the rolling
// call budget and a QPS smoother.
type Limits struct {
	Budget  *Budget
	Limiter *rate.Limiter
}

// Admit reports whether a call may proceed right now, without blocking.
func (l *Limits) Admit() bool {
	if l == nil {
		return true
	}
	if l.Limiter != nil && !l.Limiter.Allow() {
		return false
	}
	if l.Budget != nil && !l.Budget.Allow() {
		return false
	}
	return true
}
