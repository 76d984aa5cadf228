package engine

import (
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/tejashwikalptaru/harmonia/internal/domain"
	"github.com/tejashwikalptaru/harmonia/internal/ports"
)

// DefaultReferenceRadius is used until the host reports a surface size.
const DefaultReferenceRadius = 250.0

// referenceRadiusRatio scales the smaller surface dimension down to the
// reference radius, leaving a margin around the drawing.
const referenceRadiusRatio = 0.9

// Config configures a new Engine.
type Config struct {
	// Logger receives all engine log records. Required.
	Logger *slog.Logger

	// Scheduler supplies the host tick clock. Required.
	Scheduler ports.TickScheduler

	// Initial overrides the default state when non-nil.
	Initial *domain.State

	// Seed seeds the random phase policy; 0 derives a seed from the clock.
	Seed int64
}

// Engine is the reactive state and harmonic synthesis core. It owns the
// state store, the derived caches (harmonics, waveform, angle table), the
// module registry and the animation loop, and exposes the surface external
// collaborators consume.
//
// All derived artifacts are memoized and recomputed lazily on read when
// their dirty flag is set. Readers always receive copies; the caches are
// owned exclusively by the engine.
type Engine struct {
	logger *slog.Logger

	store    *Store
	registry *Registry
	animator *Animator
	interact *InteractionController

	series *SeriesGenerator
	synth  *Synthesizer

	cacheMu         sync.Mutex
	harmonics       []domain.Harmonic
	waveform        domain.SampleBuffer
	angles          *AngleCache
	referenceRadius float64

	mu     sync.Mutex
	closed bool
}

// New creates an engine with documented default state. Construction is the
// only place a hard failure can occur; everything after it degrades softly.
func New(cfg Config) (*Engine, error) {
	if cfg.Logger == nil {
		return nil, errors.New("engine: logger is required")
	}
	if cfg.Scheduler == nil {
		return nil, errors.New("engine: tick scheduler is required")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	initial := domain.DefaultState()
	if cfg.Initial != nil {
		initial = *cfg.Initial
	}
	initial.IsRunning = false

	e := &Engine{
		logger:          cfg.Logger,
		series:          NewSeriesGenerator(cfg.Logger.With(slog.String("component", "series")), rand.New(rand.NewSource(seed))),
		synth:           NewSynthesizer(cfg.Logger.With(slog.String("component", "waveform"))),
		angles:          NewAngleCache(initial.AxisCount),
		referenceRadius: DefaultReferenceRadius,
	}
	e.registry = NewRegistry(cfg.Logger.With(slog.String("component", "registry")))
	e.store = NewStore(cfg.Logger.With(slog.String("component", "store")), initial, e.handleChange)
	e.animator = NewAnimator(cfg.Logger.With(slog.String("component", "animator")), e.store, e.registry, cfg.Scheduler, e.refreshCaches)
	e.interact = NewInteractionController(cfg.Logger.With(slog.String("component", "interaction")), e.store)

	return e, nil
}

// handleChange is wired into the store: notify collaborators synchronously,
// then request one coalesced render tick.
func (e *Engine) handleChange(state domain.State, changes domain.ChangeSet) {
	e.registry.NotifyStateUpdate(state, changes)
	e.animator.RequestRender()
}

// State returns a defensive copy of the configuration state.
func (e *Engine) State() domain.State {
	return e.store.State()
}

// Update merges a partial state update. Parameter problems are clamped or
// logged inside the store; Update itself never fails.
func (e *Engine) Update(patch domain.Patch) {
	e.store.Update(patch)
}

// Harmonics returns the current harmonic series, recomputing it first when
// a relevant parameter changed since the last read. The returned slice is a
// copy; the cached series is never mutated in place.
func (e *Engine) Harmonics() []domain.Harmonic {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	e.refreshHarmonicsLocked()

	out := make([]domain.Harmonic, len(e.harmonics))
	copy(out, e.harmonics)
	return out
}

// Waveform returns the current sampled waveform, recomputing it (and the
// harmonics it depends on) first when stale. The returned buffer is a copy.
func (e *Engine) Waveform() domain.SampleBuffer {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	e.refreshWaveformLocked()

	out := make(domain.SampleBuffer, len(e.waveform))
	copy(out, e.waveform)
	return out
}

// Angles returns the precomputed unit-circle samples for the configured
// axis count, rebuilding the cache when axisCount changed.
func (e *Engine) Angles() []domain.AngleSample {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	e.refreshAnglesLocked()
	return e.angles.Samples()
}

// ReferenceRadius returns the current size-derived amplitude reference.
func (e *Engine) ReferenceRadius() float64 {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	return e.referenceRadius
}

// refreshCaches recomputes every stale artifact. Invoked once per tick by
// the animator, before Render fans out, so the caches swap atomically
// within the tick and no partial recomputation is observable.
func (e *Engine) refreshCaches() {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	e.refreshAnglesLocked()
	e.refreshWaveformLocked()
}

func (e *Engine) refreshHarmonicsLocked() {
	if !e.store.NeedsHarmonics() && e.harmonics != nil {
		return
	}
	st := e.store.State()
	e.harmonics = e.series.Generate(st.HarmonicCount, st.SeriesType, st.PhasePolicy)
	e.store.MarkHarmonicsClean()
	e.logger.Debug("harmonics recomputed",
		slog.String("series", describeSeries(st.HarmonicCount, st.SeriesType, st.PhasePolicy)))
}

func (e *Engine) refreshWaveformLocked() {
	e.refreshHarmonicsLocked()
	if !e.store.NeedsWaveform() && e.waveform != nil {
		return
	}
	st := e.store.State()
	start := time.Now()
	e.waveform = e.synth.Synthesize(e.harmonics, st.Resolution, st.Wavelength, e.referenceRadius)
	e.store.MarkWaveformClean()
	e.animator.RecordWaveformCalc(time.Since(start))
}

func (e *Engine) refreshAnglesLocked() {
	if !e.store.NeedsAngles() {
		return
	}
	e.angles.Rebuild(e.store.State().AxisCount)
	e.store.MarkAnglesClean()
}

// RegisterModule adds an external collaborator under a unique name.
func (e *Engine) RegisterModule(name string, module ports.Module) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return domain.ErrEngineClosed
	}
	return e.registry.Register(name, module)
}

// Module returns the collaborator registered under name.
func (e *Engine) Module(name string) (ports.Module, error) {
	return e.registry.Get(name)
}

// InitializeModules runs every registered module's Initialize hook.
func (e *Engine) InitializeModules() {
	e.registry.Initialize()
}

// Interaction returns the gesture controller bound to this engine's store.
func (e *Engine) Interaction() *InteractionController {
	return e.interact
}

// Start begins the animation loop.
func (e *Engine) Start() { e.animator.Start() }

// Stop halts the animation loop, leaving state untouched.
func (e *Engine) Stop() { e.animator.Stop() }

// Toggle starts or stops the animation loop, whichever is valid.
func (e *Engine) Toggle() { e.animator.Toggle() }

// IsRunning reports whether the animation loop is active.
func (e *Engine) IsRunning() bool { return e.animator.IsRunning() }

// OnResize recomputes the size-derived reference radius, invalidates the
// waveform normalization target, notifies resizer modules and requests a
// render.
func (e *Engine) OnResize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}

	radius := math.Min(width, height) / 2 * referenceRadiusRatio
	e.cacheMu.Lock()
	changed := radius != e.referenceRadius
	e.referenceRadius = radius
	e.cacheMu.Unlock()

	if changed {
		e.store.MarkWaveformDirty()
	}
	e.registry.NotifyResize(width, height)
	e.animator.RequestRender()
}

// Metrics returns a copy of the latest per-tick timing measurements.
func (e *Engine) Metrics() domain.Metrics {
	return e.animator.Metrics()
}

// RecordAudioLatency lets the audio module report its output latency for
// inclusion in Metrics.
func (e *Engine) RecordAudioLatency(d time.Duration) {
	e.animator.RecordAudioLatency(d)
}

// Shutdown stops the loop and releases every module. Idempotent.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.animator.Stop()
	e.registry.Close()
	e.logger.Info("engine shut down")
}
