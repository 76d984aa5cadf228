// Package wavfile renders a harmonic series to a 16-bit PCM WAV file, so a
// configuration heard live can be taken away as an audio asset.
package wavfile

import (
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
	"github.com/tejashwikalptaru/harmonia/internal/domain"
)

// DefaultSampleRate is the output rate used when none is configured.
const DefaultSampleRate = 44100

// fadeDuration ramps the start and end of the rendered clip to avoid clicks.
const fadeDuration = 5 * time.Millisecond

// Exporter performs offline additive rendering of a harmonic series.
type Exporter struct {
	logger     *slog.Logger
	sampleRate int
}

// NewExporter creates an exporter. A non-positive sample rate falls back to
// DefaultSampleRate.
func NewExporter(logger *slog.Logger, sampleRate int) *Exporter {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Exporter{logger: logger, sampleRate: sampleRate}
}

// SampleRate returns the configured output rate.
func (e *Exporter) SampleRate() int {
	return e.sampleRate
}

// Export renders the harmonic series at the state's base frequency for the
// given duration and writes it to path as mono 16-bit PCM.
func (e *Exporter) Export(path string, state domain.State, harmonics []domain.Harmonic, duration time.Duration) error {
	if len(harmonics) == 0 {
		return domain.NewComputationError("export", "no harmonics to render")
	}
	if duration <= 0 {
		return domain.NewComputationError("export", "non-positive duration")
	}

	freq := domain.Clamp(state.BaseFrequency, domain.MinBaseFrequency, domain.MaxBaseFrequency)
	volume := domain.Clamp(state.MasterVolume, domain.MinMasterVolume, domain.MaxMasterVolume)
	frames := int(float64(e.sampleRate) * duration.Seconds())
	samples := e.render(harmonics, freq, volume, frames)

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	// 16-bit PCM, audioFormat = 1
	encoder := wav.NewEncoder(file, e.sampleRate, 16, 1, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  e.sampleRate,
			NumChannels: 1,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		encoder.Close()
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	e.logger.Info("exported waveform",
		slog.String("path", path),
		slog.Int("frames", frames),
		slog.Float64("frequency", freq))
	return nil
}

// render sums the series additively, peak-normalizes to the master volume
// and applies short edge fades.
func (e *Exporter) render(harmonics []domain.Harmonic, freq, volume float64, frames int) []float32 {
	samples := make([]float32, frames)

	for n := range samples {
		t := float64(n) / float64(e.sampleRate)
		var sum float64
		for _, h := range harmonics {
			if h.Ratio == 0 {
				continue
			}
			sum += math.Sin(2*math.Pi*freq*h.Ratio*t+h.Phase) / h.Ratio
		}
		samples[n] = float32(sum)
	}

	var peak float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		scale := float32(volume) / peak
		for i := range samples {
			samples[i] *= scale
		}
	}

	fadeFrames := int(float64(e.sampleRate) * fadeDuration.Seconds())
	if fadeFrames*2 > frames {
		fadeFrames = frames / 2
	}
	for i := 0; i < fadeFrames; i++ {
		g := float32(i) / float32(fadeFrames)
		samples[i] *= g
		samples[frames-1-i] *= g
	}

	return samples
}
