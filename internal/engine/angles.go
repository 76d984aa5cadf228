package engine

import (
	"math"

	"github.com/tejashwikalptaru/harmonia/internal/domain"
)

// AngleCache precomputes unit-circle samples for the configured axis count.
// It is rebuilt whenever axisCount changes and read on every frame by
// consumers drawing axes and spokes.
type AngleCache struct {
	axisCount int
	samples   []domain.AngleSample
}

// NewAngleCache creates a cache for axisCount evenly spaced directions.
func NewAngleCache(axisCount int) *AngleCache {
	c := &AngleCache{}
	c.Rebuild(axisCount)
	return c
}

// Rebuild regenerates the samples for a new axis count. A no-op when the
// count is unchanged.
func (c *AngleCache) Rebuild(axisCount int) {
	axisCount = domain.ClampInt(axisCount, domain.MinAxisCount, domain.MaxAxisCount)
	if axisCount == c.axisCount {
		return
	}

	samples := make([]domain.AngleSample, axisCount)
	step := 2 * math.Pi / float64(axisCount)
	for i := range samples {
		a := float64(i) * step
		samples[i] = domain.AngleSample{Angle: a, Sin: math.Sin(a), Cos: math.Cos(a)}
	}

	c.axisCount = axisCount
	c.samples = samples
}

// AxisCount returns the axis count the cache was built for.
func (c *AngleCache) AxisCount() int { return c.axisCount }

// Samples returns a copy of the cached samples.
func (c *AngleCache) Samples() []domain.AngleSample {
	out := make([]domain.AngleSample, len(c.samples))
	copy(out, c.samples)
	return out
}
