package engine

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/harmonia/internal/domain"
)

// invalidation classifies which derived caches a state key affects.
type invalidation struct {
	harmonics  bool
	waveform   bool
	angleCache bool
}

// invalidationTable is the static mapping from state keys to the caches
// they invalidate. Keys absent from the table affect presentation only.
var invalidationTable = map[domain.StateKey]invalidation{
	domain.KeyHarmonicCount: {harmonics: true, waveform: true},
	domain.KeySeriesType:    {harmonics: true, waveform: true},
	domain.KeyPhasePolicy:   {harmonics: true, waveform: true},
	domain.KeyWavelength:    {waveform: true},
	domain.KeyResolution:    {waveform: true},
	domain.KeyAxisCount:     {angleCache: true},
}

// Store holds the configuration state, merges partial updates, tracks which
// derived caches are stale, and notifies its owner of effective changes.
//
// Change detection is by value, not by call: a patch carrying only current
// values is a complete no-op (no notification, no recompute). Numeric
// fields are clamped to their declared bounds at the point of assignment
// and rotation is always wrapped into [0, 2pi).
type Store struct {
	logger *slog.Logger

	mu    sync.RWMutex
	state domain.State

	needsHarmonics bool
	needsWaveform  bool
	needsAngles    bool

	// onChange is invoked synchronously after every effective update with a
	// state copy and the computed change set. Wired by the engine to the
	// module fan-out and the coalesced render request.
	onChange func(domain.State, domain.ChangeSet)
}

// NewStore creates a store seeded with the given state. All dirty flags
// start set so the first read of any derived artifact computes it.
func NewStore(logger *slog.Logger, initial domain.State, onChange func(domain.State, domain.ChangeSet)) *Store {
	return &Store{
		logger:         logger,
		state:          initial,
		needsHarmonics: true,
		needsWaveform:  true,
		needsAngles:    true,
		onChange:       onChange,
	}
}

// State returns a copy of the current state.
func (s *Store) State() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// fieldApplier applies one patch field to the state, reporting whether the
// value actually changed.
type fieldApplier struct {
	key   domain.StateKey
	apply func(st *domain.State, p *domain.Patch) bool
}

// appliers is evaluated in order on every update. Each entry is isolated:
// a panic inside one applier is recovered and logged without aborting the
// rest of the patch.
var appliers = []fieldApplier{
	{domain.KeyHarmonicCount, func(st *domain.State, p *domain.Patch) bool {
		if p.HarmonicCount == nil {
			return false
		}
		v := domain.ClampInt(*p.HarmonicCount, domain.MinHarmonicCount, domain.MaxHarmonicCount)
		if v == st.HarmonicCount {
			return false
		}
		st.HarmonicCount = v
		return true
	}},
	{domain.KeySeriesType, func(st *domain.State, p *domain.Patch) bool {
		if p.SeriesType == nil || *p.SeriesType == st.SeriesType {
			return false
		}
		st.SeriesType = *p.SeriesType
		return true
	}},
	{domain.KeyPhasePolicy, func(st *domain.State, p *domain.Patch) bool {
		if p.PhasePolicy == nil || *p.PhasePolicy == st.PhasePolicy {
			return false
		}
		st.PhasePolicy = *p.PhasePolicy
		return true
	}},
	{domain.KeyAxisCount, func(st *domain.State, p *domain.Patch) bool {
		if p.AxisCount == nil {
			return false
		}
		v := domain.ClampInt(*p.AxisCount, domain.MinAxisCount, domain.MaxAxisCount)
		if v == st.AxisCount {
			return false
		}
		st.AxisCount = v
		return true
	}},
	{domain.KeyWavelength, func(st *domain.State, p *domain.Patch) bool {
		if p.Wavelength == nil {
			return false
		}
		v := domain.Clamp(*p.Wavelength, domain.MinWavelength, domain.MaxWavelength)
		if v == st.Wavelength {
			return false
		}
		st.Wavelength = v
		return true
	}},
	{domain.KeyRotation, func(st *domain.State, p *domain.Patch) bool {
		if p.Rotation == nil {
			return false
		}
		v := domain.WrapAngle(*p.Rotation)
		if v == st.Rotation {
			return false
		}
		st.Rotation = v
		return true
	}},
	{domain.KeyAngularSpeed, func(st *domain.State, p *domain.Patch) bool {
		if p.AngularSpeed == nil {
			return false
		}
		v := domain.Clamp(*p.AngularSpeed, domain.MinAngularSpeed, domain.MaxAngularSpeed)
		if v == st.AngularSpeed {
			return false
		}
		st.AngularSpeed = v
		return true
	}},
	{domain.KeyZoom, func(st *domain.State, p *domain.Patch) bool {
		if p.Zoom == nil {
			return false
		}
		v := domain.Clamp(*p.Zoom, domain.MinZoom, domain.MaxZoom)
		if v == st.Zoom {
			return false
		}
		st.Zoom = v
		return true
	}},
	{domain.KeyResolution, func(st *domain.State, p *domain.Patch) bool {
		if p.Resolution == nil {
			return false
		}
		v := domain.ClampInt(*p.Resolution, domain.MinResolution, domain.MaxResolution)
		if v == st.Resolution {
			return false
		}
		st.Resolution = v
		return true
	}},
	{domain.KeyCoordinateSystem, func(st *domain.State, p *domain.Patch) bool {
		if p.CoordinateSystem == nil || *p.CoordinateSystem == st.CoordinateSystem {
			return false
		}
		st.CoordinateSystem = *p.CoordinateSystem
		return true
	}},
	{domain.KeyBaseFrequency, func(st *domain.State, p *domain.Patch) bool {
		if p.BaseFrequency == nil {
			return false
		}
		v := domain.Clamp(*p.BaseFrequency, domain.MinBaseFrequency, domain.MaxBaseFrequency)
		if v == st.BaseFrequency {
			return false
		}
		st.BaseFrequency = v
		return true
	}},
	{domain.KeyMasterVolume, func(st *domain.State, p *domain.Patch) bool {
		if p.MasterVolume == nil {
			return false
		}
		v := domain.Clamp(*p.MasterVolume, domain.MinMasterVolume, domain.MaxMasterVolume)
		if v == st.MasterVolume {
			return false
		}
		st.MasterVolume = v
		return true
	}},
	{domain.KeyAudioEnabled, func(st *domain.State, p *domain.Patch) bool {
		if p.AudioEnabled == nil || *p.AudioEnabled == st.AudioEnabled {
			return false
		}
		st.AudioEnabled = *p.AudioEnabled
		return true
	}},
	{domain.KeyShapes, func(st *domain.State, p *domain.Patch) bool {
		if p.Shapes == nil {
			return false
		}
		changed := mergeShape(&st.Shapes.Waveform, p.Shapes.Waveform)
		changed = mergeShape(&st.Shapes.Axes, p.Shapes.Axes) || changed
		changed = mergeShape(&st.Shapes.OuterRing, p.Shapes.OuterRing) || changed
		changed = mergeShape(&st.Shapes.Spokes, p.Shapes.Spokes) || changed
		return changed
	}},
	{domain.KeyIsRunning, func(st *domain.State, p *domain.Patch) bool {
		if p.IsRunning == nil || *p.IsRunning == st.IsRunning {
			return false
		}
		st.IsRunning = *p.IsRunning
		return true
	}},
}

// mergeShape merges a shape patch field-wise, never replacing the record.
func mergeShape(dst *domain.ShapeStyle, patch *domain.ShapeStylePatch) bool {
	if patch == nil {
		return false
	}
	changed := false
	if patch.Visible != nil && *patch.Visible != dst.Visible {
		dst.Visible = *patch.Visible
		changed = true
	}
	if patch.Color != nil && *patch.Color != dst.Color {
		dst.Color = *patch.Color
		changed = true
	}
	return changed
}

// Update merges a partial update into the state and returns the resulting
// change set. When nothing actually changed the call is a complete no-op.
// After applying, registered collaborators are notified synchronously via
// the onChange callback.
func (s *Store) Update(patch domain.Patch) domain.ChangeSet {
	s.mu.Lock()

	var cs domain.ChangeSet
	for _, a := range appliers {
		if s.applyField(a, &patch) {
			cs.Keys = append(cs.Keys, a.key)
			inv := invalidationTable[a.key]
			cs.Harmonics = cs.Harmonics || inv.harmonics
			cs.Waveform = cs.Waveform || inv.waveform
			cs.AngleCache = cs.AngleCache || inv.angleCache
		}
	}

	if cs.Empty() {
		s.mu.Unlock()
		return cs
	}

	s.needsHarmonics = s.needsHarmonics || cs.Harmonics
	s.needsWaveform = s.needsWaveform || cs.Waveform
	s.needsAngles = s.needsAngles || cs.AngleCache
	snapshot := s.state
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(snapshot, cs)
	}
	return cs
}

// applyField runs one applier with failure isolation: a panic while applying
// one key must not abort applying the rest of the patch.
func (s *Store) applyField(a fieldApplier, patch *domain.Patch) (changed bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("state field update failed",
				slog.String("key", string(a.key)),
				slog.Any("panic", r))
			changed = false
		}
	}()
	return a.apply(&s.state, patch)
}

// AdvanceRotation integrates rotation by angularSpeed*seconds and wraps the
// result into [0, 2pi). Called by the animation scheduler once per tick; it
// deliberately bypasses change notification because a render follows in the
// same tick.
func (s *Store) AdvanceRotation(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Rotation = domain.WrapAngle(s.state.Rotation + s.state.AngularSpeed*seconds)
}

// SetRunning records the scheduler's run state. Collaborators learn about
// transitions through OnStart/OnStop, not through a state notification.
func (s *Store) SetRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsRunning = running
}

// NeedsHarmonics reports whether the harmonic cache is stale.
func (s *Store) NeedsHarmonics() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.needsHarmonics
}

// NeedsWaveform reports whether the waveform cache is stale.
func (s *Store) NeedsWaveform() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.needsWaveform
}

// NeedsAngles reports whether the angle cache is stale.
func (s *Store) NeedsAngles() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.needsAngles
}

// MarkHarmonicsClean clears the harmonic dirty flag after a recompute.
func (s *Store) MarkHarmonicsClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needsHarmonics = false
}

// MarkWaveformClean clears the waveform dirty flag after a recompute.
func (s *Store) MarkWaveformClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needsWaveform = false
}

// MarkWaveformDirty forces a waveform recompute on the next read. Used when
// a size-derived reference value changes outside the state mapping.
func (s *Store) MarkWaveformDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needsWaveform = true
}

// MarkAnglesClean clears the angle-cache dirty flag after a rebuild.
func (s *Store) MarkAnglesClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needsAngles = false
}
