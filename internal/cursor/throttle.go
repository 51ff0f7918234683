package cursor

import (
	"sync"
	"time"
)

// Throttle rate-limits cursor publishes to one per interval, leading edge.
// The first event passes immediately; events inside the interval are dropped
// rather than queued, since only the freshest position matters.
type Throttle struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewThrottle Throttle 생성
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{
		interval: interval,
		now:      time.Now,
	}
}

// Allow reports whether an event at this instant may pass.
func (t *Throttle) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}
