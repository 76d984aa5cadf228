// Package ports defines the tick scheduler abstraction for the animation
// loop. The engine never touches timers or frame clocks directly; the host
// supplies an implementation (a real interval clock in production, a manual
// clock under test).
package ports

import "time"

// CancelTick cancels a pending tick. Calling it after the tick fired, or
// more than once, is a no-op.
type CancelTick func()

// TickScheduler schedules a single callback for the host's next tick.
// The engine reschedules itself from within the callback while running, so
// an implementation only ever has to track one pending callback per caller.
//
// The callback receives the host's notion of "now"; the engine derives its
// frame pacing (deltaTime, stale-tick detection) from it, which keeps the
// loop fully deterministic under a manual test clock.
type TickScheduler interface {
	ScheduleTick(fn func(now time.Time)) CancelTick
}
