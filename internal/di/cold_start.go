package di

import (
	"sync/atomic"
	"time"
)

// ColdStartTracker records when the process started and whether the first
// request has been served yet.
type ColdStartTracker struct {
	startedAt time.Time
	served    atomic.Bool
}

// NewColdStartTracker creates a tracker started now.
func NewColdStartTracker() *ColdStartTracker {
	return &ColdStartTracker{startedAt: time.Now()}
}

// SinceStart returns the time elapsed since the process started.
func (t *ColdStartTracker) SinceStart() time.Duration {
	return time.Since(t.startedAt)
}

// MarkServed reports true exactly once, for the first request.
func (t *ColdStartTracker) MarkServed() bool {
	return t.served.CompareAndSwap(false, true)
}
