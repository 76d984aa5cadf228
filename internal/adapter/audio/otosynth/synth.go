// Package otosynth sonifies the harmonic series: an additive oscillator bank
// streams the configured partials at the base frequency through an oto
// playback context while the animation runs and audio is enabled.
package otosynth

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"
	"github.com/tejashwikalptaru/harmonia/internal/domain"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	BitDepth     = 0 // 32-bit float (oto.FormatFloat32LE)
)

// HarmonicSource supplies the current series and receives latency reports.
// Satisfied by the engine facade.
type HarmonicSource interface {
	Harmonics() []domain.Harmonic
	RecordAudioLatency(d time.Duration)
}

// Synth is an engine module. It owns the oto context and one looping player
// fed by an endless oscillator reader; parameter changes are swapped into
// the reader without interrupting the stream.
type Synth struct {
	logger *slog.Logger
	source HarmonicSource
	reader *toneReader

	mu      sync.Mutex
	ctx     *oto.Context
	ready   chan struct{}
	player  oto.Player
	enabled bool
	running bool
}

// New creates a synth module bound to a harmonic source.
func New(logger *slog.Logger, source HarmonicSource) *Synth {
	return &Synth{
		logger: logger,
		source: source,
		reader: newToneReader(SampleRate),
	}
}

// Initialize opens the audio device. Called once by the module registry.
func (s *Synth) Initialize() error {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, BitDepth)
	if err != nil {
		return domain.NewModuleError("audio", "initialize", err)
	}

	s.mu.Lock()
	s.ctx = ctx
	s.ready = ready
	s.mu.Unlock()
	return nil
}

// OnStateUpdate retunes the oscillator bank and follows the audioEnabled
// switch. Runs synchronously inside the engine's update path, so only cheap
// parameter swaps happen here.
func (s *Synth) OnStateUpdate(state domain.State, changes domain.ChangeSet) {
	if changes.Harmonics {
		s.reader.SetHarmonics(s.source.Harmonics())
	}
	if changes.Contains(domain.KeyBaseFrequency) {
		s.reader.SetFrequency(state.BaseFrequency)
	}
	if changes.Contains(domain.KeyMasterVolume) {
		s.reader.SetVolume(state.MasterVolume)
	}
	if changes.Contains(domain.KeyAudioEnabled) {
		s.mu.Lock()
		s.enabled = state.AudioEnabled
		s.syncPlaybackLocked()
		s.mu.Unlock()
	}
}

// OnStart gates the stream open when audio is enabled.
func (s *Synth) OnStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.syncPlaybackLocked()
}

// OnStop silences the stream but keeps the device open.
func (s *Synth) OnStop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.syncPlaybackLocked()
}

// Close tears down the player. The oto context itself has no Close; it lives
// until process exit.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.enabled = false
	if s.player != nil {
		if err := s.player.Close(); err != nil {
			s.player = nil
			return domain.NewModuleError("audio", "close", err)
		}
		s.player = nil
	}
	return nil
}

// syncPlaybackLocked reconciles the player with the enabled/running pair.
// Caller holds s.mu.
func (s *Synth) syncPlaybackLocked() {
	shouldPlay := s.enabled && s.running && s.ctx != nil
	if shouldPlay {
		select {
		case <-s.ready:
		default:
			// device not ready yet, the next transition retries
			return
		}
		if s.player == nil {
			s.player = s.ctx.NewPlayer(s.reader)
		}
		if !s.player.IsPlaying() {
			s.player.Play()
			s.logger.Debug("audio stream started")
		}
		s.reportLatencyLocked()
		return
	}
	if s.player != nil && s.player.IsPlaying() {
		s.player.Pause()
		s.logger.Debug("audio stream paused")
	}
}

// reportLatencyLocked converts the player's unplayed buffer into an output
// latency estimate. Caller holds s.mu.
func (s *Synth) reportLatencyLocked() {
	if s.player == nil {
		return
	}
	bytesPerSecond := SampleRate * ChannelCount * 4
	buffered := s.player.UnplayedBufferSize()
	latency := time.Duration(float64(buffered) / float64(bytesPerSecond) * float64(time.Second))
	s.source.RecordAudioLatency(latency)
}
