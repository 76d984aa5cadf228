package app

import (
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/harmonia/internal/adapter/sched"
	"github.com/tejashwikalptaru/harmonia/internal/domain"
)

func newTestConfig() Config {
	config := DefaultConfig()
	config.Headless = true
	config.TestFyneApp = test.NewApp()
	config.Scheduler = sched.NewManual()
	config.Seed = 1
	return config
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "com.harmonia.app", config.AppID)
	assert.Equal(t, "Harmonia", config.AppName)
	assert.Equal(t, 44100, config.SampleRate)
	assert.False(t, config.Headless)
}

func TestNewApplication(t *testing.T) {
	application, err := NewApplication(newTestConfig())
	require.NoError(t, err)
	require.NotNil(t, application)

	assert.NotNil(t, application.Engine())
	assert.Equal(t, domain.DefaultState(), application.Engine().State())

	application.Shutdown()
}

func TestApplicationLifecycle(t *testing.T) {
	application, err := NewApplication(newTestConfig())
	require.NoError(t, err)

	// Run does not block in headless mode
	application.Run()

	application.Shutdown()

	// Shutdown again should not panic
	assert.NotPanics(t, application.Shutdown)
}

func TestApplicationPersistsSettings(t *testing.T) {
	config := newTestConfig()

	first, err := NewApplication(config)
	require.NoError(t, err)

	first.Engine().Update(domain.Patch{
		HarmonicCount: intPtr(20),
		SeriesType:    seriesPtr(domain.SeriesPrime),
	})
	first.Shutdown()

	// same fyne app means same preferences backend
	second, err := NewApplication(config)
	require.NoError(t, err)
	defer second.Shutdown()

	st := second.Engine().State()
	assert.Equal(t, 20, st.HarmonicCount)
	assert.Equal(t, domain.SeriesPrime, st.SeriesType)
	// running state never persists as started
	assert.False(t, st.IsRunning)
}

func TestApplicationExportWAV(t *testing.T) {
	application, err := NewApplication(newTestConfig())
	require.NoError(t, err)
	defer application.Shutdown()

	path := filepath.Join(t.TempDir(), "out.wav")
	require.NoError(t, application.ExportWAV(path, 100*time.Millisecond))
	assert.FileExists(t, path)
}

func TestApplicationEngineDrivenByScheduler(t *testing.T) {
	config := newTestConfig()
	clock := sched.NewManual()
	config.Scheduler = clock

	application, err := NewApplication(config)
	require.NoError(t, err)
	defer application.Shutdown()

	eng := application.Engine()
	eng.Update(domain.Patch{AngularSpeed: floatPtr(1.0)})
	clock.Advance(time.Millisecond) // drain the one-shot render

	eng.Start()
	clock.Advance(16 * time.Millisecond)
	clock.Advance(16 * time.Millisecond)

	assert.InDelta(t, 0.016, eng.State().Rotation, 1e-12)
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func seriesPtr(v domain.SeriesType) *domain.SeriesType { return &v }
