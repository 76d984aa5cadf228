package otosynth

import (
	"math"
	"sync"

	"github.com/tejashwikalptaru/harmonia/internal/domain"
)

// headroom keeps the summed partials away from full scale before the master
// volume is applied.
const headroom = 0.5

// toneReader is an endless io.Reader producing stereo float32 LE frames of
// the additive oscillator bank. Parameter setters may be called from any
// goroutine; the stream never returns io.EOF.
type toneReader struct {
	sampleRate int

	mu        sync.Mutex
	harmonics []domain.Harmonic
	norm      float64 // 1 / sum(1/ratio), amplitude normalization
	frequency float64
	volume    float64
	phase     float64 // fundamental phase in radians, wraps at 2*pi
}

func newToneReader(sampleRate int) *toneReader {
	defaults := domain.DefaultState()
	return &toneReader{
		sampleRate: sampleRate,
		frequency:  defaults.BaseFrequency,
		volume:     defaults.MasterVolume,
	}
}

// SetHarmonics swaps the oscillator bank. The normalization factor is
// precomputed so the render loop stays divisions-free.
func (r *toneReader) SetHarmonics(harmonics []domain.Harmonic) {
	var sum float64
	for _, h := range harmonics {
		if h.Ratio != 0 {
			sum += 1 / math.Abs(h.Ratio)
		}
	}
	norm := 0.0
	if sum > 0 {
		norm = 1 / sum
	}

	r.mu.Lock()
	r.harmonics = harmonics
	r.norm = norm
	r.mu.Unlock()
}

func (r *toneReader) SetFrequency(freq float64) {
	r.mu.Lock()
	r.frequency = domain.Clamp(freq, domain.MinBaseFrequency, domain.MaxBaseFrequency)
	r.mu.Unlock()
}

func (r *toneReader) SetVolume(volume float64) {
	r.mu.Lock()
	r.volume = domain.Clamp(volume, domain.MinMasterVolume, domain.MaxMasterVolume)
	r.mu.Unlock()
}

// Read fills p with as many whole frames as fit. The fundamental phase is
// carried across calls so retuning never glitches the waveform.
func (r *toneReader) Read(p []byte) (int, error) {
	const frameBytes = ChannelCount * 4
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}

	r.mu.Lock()
	harmonics := r.harmonics
	norm := r.norm
	gain := r.volume * headroom * norm
	step := 2 * math.Pi * r.frequency / float64(r.sampleRate)
	phase := r.phase
	r.mu.Unlock()

	for i := 0; i < frames; i++ {
		var sum float64
		for _, h := range harmonics {
			if h.Ratio == 0 {
				continue
			}
			sum += math.Sin(phase*h.Ratio+h.Phase) / h.Ratio
		}
		putStereoF32(p, i, sum*gain)

		phase += step
		if phase >= 2*math.Pi {
			phase -= 2 * math.Pi
		}
	}

	r.mu.Lock()
	r.phase = phase
	r.mu.Unlock()

	return frames * frameBytes, nil
}

// putStereoF32 writes a [-1,1] sample as float32 LE to both channels at frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	buf[i*8] = byte(v)
	buf[i*8+1] = byte(v >> 8)
	buf[i*8+2] = byte(v >> 16)
	buf[i*8+3] = byte(v >> 24)
	buf[i*8+4] = byte(v)
	buf[i*8+5] = byte(v >> 8)
	buf[i*8+6] = byte(v >> 16)
	buf[i*8+7] = byte(v >> 24)
}
