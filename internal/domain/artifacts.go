package domain

import "math"

// Harmonic is one frequency-ratio/phase pair contributing a weighted sine
// term to the synthesized waveform. Harmonics are regenerated wholesale on
// recomputation and never mutated in place.
type Harmonic struct {
	Ratio float64 // frequency multiplier relative to the fundamental
	Phase float64 // radians
}

// SampleBuffer is a fixed-length sequence of amplitudes indexed by
// normalized time t in [0,1).
type SampleBuffer []float64

// MaxAbs returns the largest absolute amplitude in the buffer.
func (b SampleBuffer) MaxAbs() float64 {
	m := 0.0
	for _, v := range b {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// At returns the sample nearest to normalized time t, wrapping t into [0,1).
func (b SampleBuffer) At(t float64) float64 {
	if len(b) == 0 {
		return 0
	}
	t = t - math.Floor(t)
	i := int(t * float64(len(b)))
	if i >= len(b) {
		i = len(b) - 1
	}
	return b[i]
}

// AngleSample is one precomputed unit-circle direction.
type AngleSample struct {
	Angle float64
	Sin   float64
	Cos   float64
}

// Metrics holds per-tick timing measurements. The whole record is
// overwritten every tick and never persisted.
type Metrics struct {
	FPS              float64
	FrameTime        float64 // milliseconds
	RenderTime       float64 // milliseconds
	WaveformCalcTime float64 // milliseconds
	AudioLatency     float64 // milliseconds
}

// StateKey names one top-level state parameter for change reporting.
type StateKey string

// State keys as reported in ChangeSets.
const (
	KeyHarmonicCount    StateKey = "harmonicCount"
	KeySeriesType       StateKey = "seriesType"
	KeyPhasePolicy      StateKey = "phasePolicy"
	KeyAxisCount        StateKey = "axisCount"
	KeyWavelength       StateKey = "wavelength"
	KeyRotation         StateKey = "rotation"
	KeyAngularSpeed     StateKey = "angularSpeed"
	KeyZoom             StateKey = "zoom"
	KeyResolution       StateKey = "resolution"
	KeyCoordinateSystem StateKey = "coordinateSystem"
	KeyBaseFrequency    StateKey = "baseFrequency"
	KeyMasterVolume     StateKey = "masterVolume"
	KeyAudioEnabled     StateKey = "audioEnabled"
	KeyShapes           StateKey = "shapes"
	KeyIsRunning        StateKey = "isRunning"
)

// ChangeSet reports which keys an update actually changed and which derived
// caches that invalidates.
type ChangeSet struct {
	Keys []StateKey

	Harmonics  bool
	Waveform   bool
	AngleCache bool
}

// Empty reports whether the update changed nothing.
func (c ChangeSet) Empty() bool {
	return len(c.Keys) == 0
}

// Contains reports whether the given key changed.
func (c ChangeSet) Contains(key StateKey) bool {
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}
