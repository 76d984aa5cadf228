package sched

import (
	"sync"
	"time"

	"github.com/tejashwikalptaru/harmonia/internal/ports"
)

// Manual is a test-harness scheduler: ticks fire only when the test calls
// Advance, with a fully controlled clock. This makes the animation loop
// deterministic: deltaTime is exactly what the test says it is.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	pending []*manualTick
}

type manualTick struct {
	fn        func(now time.Time)
	cancelled bool
}

// NewManual creates a manual scheduler starting at an arbitrary fixed time.
func NewManual() *Manual {
	return &Manual{now: time.Unix(1_700_000_000, 0)}
}

// ScheduleTick queues fn for the next Advance call.
func (m *Manual) ScheduleTick(fn func(now time.Time)) ports.CancelTick {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTick{fn: fn}
	m.pending = append(m.pending, t)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.cancelled = true
	}
}

// Advance moves the clock forward by dt and fires every tick that was
// pending before the call. Ticks scheduled by the fired callbacks wait for
// the next Advance, mirroring how a frame clock coalesces work.
func (m *Manual) Advance(dt time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(dt)
	now := m.now
	due := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, t := range due {
		m.mu.Lock()
		cancelled := t.cancelled
		m.mu.Unlock()
		if !cancelled {
			t.fn(now)
		}
	}
}

// PendingTicks reports how many callbacks are queued.
func (m *Manual) PendingTicks() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.pending {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Now returns the scheduler's current clock reading.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Verify interface implementation.
var _ ports.TickScheduler = (*Manual)(nil)
