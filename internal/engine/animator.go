package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/harmonia/internal/domain"
	"github.com/tejashwikalptaru/harmonia/internal/ports"
)

// StaleTickThreshold is the deltaTime above which a tick skips state
// mutation. After the host was suspended (backgrounded tab, stopped clock)
// the first tick back would otherwise integrate a large rotation jump.
const StaleTickThreshold = 100 * time.Millisecond

// Animator owns the run/stop lifecycle of the frame loop. While running it
// integrates rotation over time, triggers lazy recomputation of stale
// caches, fans out Render to the registered modules and records timing
// metrics. While stopped it still serves coalesced one-shot render requests
// so state edits remain visible.
//
// Multiple Update calls between two ticks collapse into a single
// recompute+notify+render cycle: a pending-tick flag ensures at most one
// tick is scheduled at any time, and the dirty flags make the recompute
// itself idempotent. This is the engine's backpressure against UI-driven
// update storms.
type Animator struct {
	logger    *slog.Logger
	store     *Store
	registry  *Registry
	sched     ports.TickScheduler
	recompute func() // lazy cache refresh, supplied by the engine facade

	mu       sync.Mutex
	running  bool
	pending  bool
	cancel   ports.CancelTick
	lastTick time.Time
	hasLast  bool
	metrics  domain.Metrics
}

// NewAnimator creates an animator in the Stopped state.
func NewAnimator(logger *slog.Logger, store *Store, registry *Registry, sched ports.TickScheduler, recompute func()) *Animator {
	return &Animator{
		logger:    logger,
		store:     store,
		registry:  registry,
		sched:     sched,
		recompute: recompute,
	}
}

// IsRunning reports whether the frame loop is active.
func (a *Animator) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Start transitions Stopped -> Running, begins the frame loop and notifies
// collaborators' OnStart. A no-op when already running.
func (a *Animator) Start() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.hasLast = false
	if !a.pending {
		a.pending = true
		a.cancel = a.sched.ScheduleTick(a.tick)
	}
	a.mu.Unlock()

	a.store.SetRunning(true)
	a.logger.Debug("animation started")
	a.registry.NotifyStart()
}

// Stop transitions Running -> Stopped, cancels the pending tick and
// notifies collaborators' OnStop. State is left untouched. A no-op when
// already stopped.
func (a *Animator) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	if a.pending && a.cancel != nil {
		a.cancel()
	}
	a.pending = false
	a.cancel = nil
	a.mu.Unlock()

	a.store.SetRunning(false)
	a.logger.Debug("animation stopped")
	a.registry.NotifyStop()
}

// Toggle delegates to whichever transition is valid.
func (a *Animator) Toggle() {
	if a.IsRunning() {
		a.Stop()
	} else {
		a.Start()
	}
}

// RequestRender schedules one coalesced recompute+render tick. While
// running the regular loop covers it; while stopped at most one one-shot
// tick is pending regardless of how many requests arrive.
func (a *Animator) RequestRender() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending {
		return
	}
	a.pending = true
	a.cancel = a.sched.ScheduleTick(a.tick)
}

// Metrics returns a copy of the latest per-tick measurements.
func (a *Animator) Metrics() domain.Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.metrics
}

// RecordWaveformCalc stores the duration of the latest waveform recompute.
func (a *Animator) RecordWaveformCalc(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics.WaveformCalcTime = float64(d) / float64(time.Millisecond)
}

// RecordAudioLatency stores the audio module's reported output latency.
func (a *Animator) RecordAudioLatency(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics.AudioLatency = float64(d) / float64(time.Millisecond)
}

// tick runs one frame: integrate, recompute stale caches, render, measure,
// reschedule.
func (a *Animator) tick(now time.Time) {
	a.mu.Lock()
	a.pending = false
	a.cancel = nil
	wasRunning := a.running

	var dt time.Duration
	if wasRunning {
		if a.hasLast {
			dt = now.Sub(a.lastTick)
		}
		a.lastTick = now
		a.hasLast = true
	}
	a.mu.Unlock()

	if wasRunning && dt > 0 {
		if dt > StaleTickThreshold {
			// Host was suspended; skip integration for this tick but keep
			// the loop alive.
			a.logger.Debug("stale tick, skipping integration",
				slog.Duration("delta", dt))
		} else {
			a.store.AdvanceRotation(dt.Seconds())
		}
	}

	a.recompute()

	renderStart := time.Now()
	a.registry.Render()
	renderTime := time.Since(renderStart)

	a.mu.Lock()
	a.metrics.RenderTime = float64(renderTime) / float64(time.Millisecond)
	if dt > 0 {
		a.metrics.FrameTime = float64(dt) / float64(time.Millisecond)
		a.metrics.FPS = 1000 / a.metrics.FrameTime
	}
	if a.running && !a.pending {
		a.pending = true
		a.cancel = a.sched.ScheduleTick(a.tick)
	}
	a.mu.Unlock()
}
