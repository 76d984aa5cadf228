// Package domain defines the engine's data model: configuration state,
// partial-update patches, derived artifacts and their invalidation classes.
// Types here are plain values with no behavior beyond clamping and merging,
// independent of any rendering or audio infrastructure.
package domain

import "math"

// SeriesType selects the rule that generates the sequence of frequency
// ratios for the harmonic series.
type SeriesType string

// Supported series types.
const (
	SeriesNatural   SeriesType = "natural"   // i+1
	SeriesOctave    SeriesType = "octave"    // 2^i
	SeriesOdd       SeriesType = "odd"       // 2i+1
	SeriesEven      SeriesType = "even"      // 2(i+1)
	SeriesPrime     SeriesType = "prime"     // i-th prime
	SeriesFibonacci SeriesType = "fibonacci" // Fibonacci(i+1), seed 1,1
	SeriesUpper     SeriesType = "upper"     // 1.5^i
	SeriesLower     SeriesType = "lower"     // 1.5^-i
	SeriesUnder     SeriesType = "under"     // 1/(i+1)
	SeriesGeometric SeriesType = "geometric" // phi^i
	SeriesHarmonic  SeriesType = "harmonic"  // 1/(i+1)
	SeriesSingular  SeriesType = "singular"  // single entry, ratio = count
)

// PhasePolicy selects how phases are assigned across the generated series.
type PhasePolicy string

// Supported phase policies.
const (
	PhaseFlat        PhasePolicy = "flat"        // 0 for every entry
	PhaseAscending   PhasePolicy = "ascending"   // i/count * 2pi
	PhaseDescending  PhasePolicy = "descending"  // (count-i)/count * 2pi
	PhaseAlternating PhasePolicy = "alternating" // (i mod 2) * pi
	PhaseRandom      PhasePolicy = "random"      // uniform(0, 2pi) per entry
)

// CoordinateSystem selects how consumers project the scalar waveform.
type CoordinateSystem string

// Supported coordinate systems.
const (
	CoordPolar     CoordinateSystem = "polar"     // sample is a radial deviation
	CoordCartesian CoordinateSystem = "cartesian" // sample is a vertical offset
)

// ShapeStyle is the per-shape visibility/color sub-record. Patches merge
// into it field-wise; a shape is never replaced wholesale.
type ShapeStyle struct {
	Visible bool
	Color   string
}

// Shapes groups the statically declared shape sub-records.
type Shapes struct {
	Waveform  ShapeStyle
	Axes      ShapeStyle
	OuterRing ShapeStyle
	Spokes    ShapeStyle
}

// State is the full configuration state of the engine. It is a value type:
// readers always receive a copy, and mutation happens only through
// Store.Update.
type State struct {
	HarmonicCount    int
	SeriesType       SeriesType
	PhasePolicy      PhasePolicy
	AxisCount        int
	Wavelength       float64
	Rotation         float64 // radians, always in [0, 2pi)
	AngularSpeed     float64 // radians per second
	Zoom             float64
	Resolution       int
	CoordinateSystem CoordinateSystem
	BaseFrequency    float64 // Hz, fundamental for the audio module
	MasterVolume     float64
	AudioEnabled     bool
	Shapes           Shapes
	IsRunning        bool
}

// Declared parameter bounds. Every numeric assignment clamps against these.
const (
	MinHarmonicCount = 1
	MaxHarmonicCount = 32
	MinAxisCount     = 1
	MaxAxisCount     = 64
	MinWavelength    = 0.25
	MaxWavelength    = 4.0
	MinAngularSpeed  = -4.0
	MaxAngularSpeed  = 4.0
	MinZoom          = 0.1
	MaxZoom          = 8.0
	MinResolution    = 16
	MaxResolution    = 4096
	MinBaseFrequency = 20.0
	MaxBaseFrequency = 2000.0
	MinMasterVolume  = 0.0
	MaxMasterVolume  = 1.0
)

// DefaultState returns the documented engine defaults.
func DefaultState() State {
	return State{
		HarmonicCount:    8,
		SeriesType:       SeriesNatural,
		PhasePolicy:      PhaseFlat,
		AxisCount:        12,
		Wavelength:       1.0,
		Rotation:         0,
		AngularSpeed:     0.5,
		Zoom:             1.0,
		Resolution:       720,
		CoordinateSystem: CoordPolar,
		BaseFrequency:    220.0,
		MasterVolume:     0.8,
		AudioEnabled:     false,
		Shapes: Shapes{
			Waveform:  ShapeStyle{Visible: true, Color: "#4dd0e1"},
			Axes:      ShapeStyle{Visible: true, Color: "#333333"},
			OuterRing: ShapeStyle{Visible: true, Color: "#555555"},
			Spokes:    ShapeStyle{Visible: false, Color: "#222222"},
		},
		IsRunning: false,
	}
}

// ShapeStylePatch is a field-wise partial update for one shape.
type ShapeStylePatch struct {
	Visible *bool
	Color   *string
}

// ShapesPatch is a field-wise partial update for the shape sub-records.
type ShapesPatch struct {
	Waveform  *ShapeStylePatch
	Axes      *ShapeStylePatch
	OuterRing *ShapeStylePatch
	Spokes    *ShapeStylePatch
}

// Patch is a partial state update. Nil fields are untouched; non-nil fields
// are applied (clamped to declared bounds) only when structurally different
// from the current value.
type Patch struct {
	HarmonicCount    *int
	SeriesType       *SeriesType
	PhasePolicy      *PhasePolicy
	AxisCount        *int
	Wavelength       *float64
	Rotation         *float64
	AngularSpeed     *float64
	Zoom             *float64
	Resolution       *int
	CoordinateSystem *CoordinateSystem
	BaseFrequency    *float64
	MasterVolume     *float64
	AudioEnabled     *bool
	Shapes           *ShapesPatch
	IsRunning        *bool
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WrapAngle folds an angle into [0, 2pi).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
