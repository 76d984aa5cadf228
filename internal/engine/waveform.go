package engine

import (
	"log/slog"
	"math"

	"github.com/tejashwikalptaru/harmonia/internal/domain"
)

// AmplitudeScale is the fraction of the reference radius the normalized
// waveform peak is allowed to occupy. It keeps the combined waveform inside
// the drawing area regardless of harmonic count or series.
const AmplitudeScale = 0.2

// Synthesizer maps a harmonic set to a normalized sampled waveform. The
// output is a scalar amplitude series; projecting it radially (polar) or
// vertically (cartesian) is the consumer's job.
type Synthesizer struct {
	logger *slog.Logger
}

// NewSynthesizer creates a waveform synthesizer.
func NewSynthesizer(logger *slog.Logger) *Synthesizer {
	return &Synthesizer{logger: logger}
}

// Synthesize samples resolution points x in [0, 2pi), summing
// (1/ratio)*sin(ratio*x/wavelength + phase) over all harmonics. Higher
// harmonics are weighted inversely by ratio, matching natural overtone
// decay. The result is peak-normalized to referenceRadius*AmplitudeScale;
// an all-zero sum is left untouched.
//
// A panic inside the summation is recovered at this boundary and replaced
// by a flat buffer, so a degenerate harmonic set can never halt a tick.
func (s *Synthesizer) Synthesize(harmonics []domain.Harmonic, resolution int, wavelength, referenceRadius float64) (buf domain.SampleBuffer) {
	resolution = domain.ClampInt(resolution, domain.MinResolution, domain.MaxResolution)
	wavelength = domain.Clamp(wavelength, domain.MinWavelength, domain.MaxWavelength)

	buf = make(domain.SampleBuffer, resolution)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("waveform synthesis panicked, substituting flat buffer",
				slog.Any("panic", r))
			for i := range buf {
				buf[i] = 0
			}
		}
	}()

	if len(harmonics) == 0 {
		return buf
	}

	step := 2 * math.Pi / float64(resolution)
	for i := range buf {
		x := float64(i) * step / wavelength
		sum := 0.0
		for _, h := range harmonics {
			if h.Ratio == 0 {
				continue
			}
			sum += math.Sin(h.Ratio*x+h.Phase) / h.Ratio
		}
		buf[i] = sum
	}

	normalize(buf, referenceRadius*AmplitudeScale)
	return buf
}

// normalize scales the buffer so max(|sample|) equals target. A zero peak
// leaves the buffer untouched.
func normalize(buf domain.SampleBuffer, target float64) {
	peak := buf.MaxAbs()
	if peak == 0 {
		return
	}
	scale := target / peak
	for i := range buf {
		buf[i] *= scale
	}
}
