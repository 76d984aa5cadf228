// Package sched provides host tick-scheduler implementations: a real
// interval clock for production and a manually advanced clock for
// deterministic tests.
package sched

import (
	"sync"
	"time"

	"github.com/tejashwikalptaru/harmonia/internal/ports"
)

// DefaultInterval approximates a 60 Hz frame clock.
const DefaultInterval = 16 * time.Millisecond

// Ticker schedules callbacks on a real wall clock using time.AfterFunc.
// Each ScheduleTick arms exactly one timer; the engine reschedules itself
// from inside the callback while running.
type Ticker struct {
	interval time.Duration
}

// NewTicker creates a ticker scheduler. A non-positive interval falls back
// to DefaultInterval.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{interval: interval}
}

// ScheduleTick arms a one-shot timer for the next tick.
func (t *Ticker) ScheduleTick(fn func(now time.Time)) ports.CancelTick {
	var once sync.Once
	timer := time.AfterFunc(t.interval, func() {
		fn(time.Now())
	})
	return func() {
		once.Do(func() { timer.Stop() })
	}
}

// Verify interface implementation.
var _ ports.TickScheduler = (*Ticker)(nil)
