package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/harmonia/internal/adapter/sched"
	"github.com/tejashwikalptaru/harmonia/internal/domain"
	"github.com/tejashwikalptaru/harmonia/internal/logger"
)

func newTestEngine(t *testing.T) (*Engine, *sched.Manual) {
	t.Helper()

	clock := sched.NewManual()
	e, err := New(Config{
		Logger:    logger.NewTestLogger(),
		Scheduler: clock,
		Seed:      1,
	})
	require.NoError(t, err)
	t.Cleanup(e.Shutdown)
	return e, clock
}

func TestEngine_NewRequiresLoggerAndScheduler(t *testing.T) {
	_, err := New(Config{Scheduler: sched.NewManual()})
	assert.Error(t, err)

	_, err = New(Config{Logger: logger.NewTestLogger()})
	assert.Error(t, err)
}

func TestEngine_DefaultState(t *testing.T) {
	e, _ := newTestEngine(t)

	st := e.State()
	assert.Equal(t, domain.DefaultState(), st)
	assert.False(t, e.IsRunning())
}

func TestEngine_InitialStateNeverStartsRunning(t *testing.T) {
	clock := sched.NewManual()
	initial := domain.DefaultState()
	initial.IsRunning = true
	initial.HarmonicCount = 3

	e, err := New(Config{
		Logger:    logger.NewTestLogger(),
		Scheduler: clock,
		Initial:   &initial,
	})
	require.NoError(t, err)
	defer e.Shutdown()

	assert.False(t, e.State().IsRunning)
	assert.False(t, e.IsRunning())
	assert.Equal(t, 3, e.State().HarmonicCount)
}

func TestEngine_HarmonicsLazyRecompute(t *testing.T) {
	e, _ := newTestEngine(t)

	hs := e.Harmonics()
	require.Len(t, hs, domain.DefaultState().HarmonicCount)

	// changing harmonicCount leaves the flag dirty until the next read
	e.Update(domain.Patch{HarmonicCount: intPtr(4)})
	assert.True(t, e.store.NeedsHarmonics())

	hs = e.Harmonics()
	assert.Len(t, hs, 4)
	assert.False(t, e.store.NeedsHarmonics())

	// a presentation-only change does not re-dirty the series
	e.Update(domain.Patch{Zoom: floatPtr(2)})
	assert.False(t, e.store.NeedsHarmonics())
}

func TestEngine_WaveformFollowsHarmonics(t *testing.T) {
	e, _ := newTestEngine(t)

	buf := e.Waveform()
	require.Len(t, buf, domain.DefaultState().Resolution)

	e.Update(domain.Patch{Resolution: intPtr(128)})
	assert.Len(t, e.Waveform(), 128)

	// a series change flows through to the waveform on the next read
	e.Update(domain.Patch{SeriesType: seriesPtr(domain.SeriesSingular)})
	require.Len(t, e.Harmonics(), 1)
	peak := e.Waveform().MaxAbs()
	assert.InDelta(t, DefaultReferenceRadius*AmplitudeScale, peak, 1e-9)
}

func TestEngine_RepeatedReadsReuseCache(t *testing.T) {
	e, _ := newTestEngine(t)

	first := e.Waveform()
	second := e.Waveform()
	assert.Equal(t, first, second)
	assert.False(t, e.store.NeedsWaveform())
}

func TestEngine_ReturnsDefensiveCopies(t *testing.T) {
	e, _ := newTestEngine(t)

	hs := e.Harmonics()
	hs[0].Ratio = 1e9
	assert.NotEqual(t, 1e9, e.Harmonics()[0].Ratio)

	buf := e.Waveform()
	buf[0] = 1e9
	assert.NotEqual(t, 1e9, e.Waveform()[0])

	angles := e.Angles()
	angles[0].Sin = 1e9
	assert.NotEqual(t, 1e9, e.Angles()[0].Sin)
}

func TestEngine_AnglesTrackAxisCount(t *testing.T) {
	e, _ := newTestEngine(t)

	require.Len(t, e.Angles(), domain.DefaultState().AxisCount)

	e.Update(domain.Patch{AxisCount: intPtr(5)})
	assert.Len(t, e.Angles(), 5)
}

func TestEngine_UpdateNotifiesModulesAndCoalescesRenders(t *testing.T) {
	e, clock := newTestEngine(t)

	counter := &renderCounter{}
	var log []string
	observer := &recorderModule{name: "obs", log: &log}
	require.NoError(t, e.RegisterModule("counter", counter))
	require.NoError(t, e.RegisterModule("obs", observer))

	// ten updates inside one frame produce ten synchronous notifications
	// but only a single scheduled render tick
	for i := 10; i < 20; i++ {
		e.Update(domain.Patch{HarmonicCount: intPtr(i)})
	}
	assert.Equal(t, 10, len(log))
	assert.Equal(t, 1, clock.PendingTicks())

	clock.Advance(16 * time.Millisecond)
	assert.Equal(t, 1, counter.renders)

	// the tick refreshed the caches, so flags are clean afterwards
	assert.False(t, e.store.NeedsWaveform())
	assert.Len(t, e.Harmonics(), 19)
}

func TestEngine_StartStopLifecycle(t *testing.T) {
	e, clock := newTestEngine(t)
	counter := &renderCounter{}
	require.NoError(t, e.RegisterModule("counter", counter))

	e.Start()
	assert.True(t, e.IsRunning())
	assert.Equal(t, 1, counter.starts)

	clock.Advance(16 * time.Millisecond)
	clock.Advance(16 * time.Millisecond)
	assert.Equal(t, 2, counter.renders)

	e.Toggle()
	assert.False(t, e.IsRunning())
	assert.Equal(t, 1, counter.stops)
	assert.Zero(t, clock.PendingTicks())
}

func TestEngine_RunningLoopRotates(t *testing.T) {
	e, clock := newTestEngine(t)
	e.Update(domain.Patch{AngularSpeed: floatPtr(1.0)})
	clock.Advance(time.Millisecond) // drain the update's one-shot render

	e.Start()
	clock.Advance(16 * time.Millisecond)
	clock.Advance(16 * time.Millisecond)

	assert.InDelta(t, 0.016, e.State().Rotation, 1e-12)
}

func TestEngine_OnResize(t *testing.T) {
	e, clock := newTestEngine(t)

	e.Waveform() // warm the cache at the default radius
	e.OnResize(1000, 600)

	assert.InDelta(t, 270.0, e.ReferenceRadius(), 1e-12)
	assert.True(t, e.store.NeedsWaveform())
	assert.InDelta(t, 270.0*AmplitudeScale, e.Waveform().MaxAbs(), 1e-6)
	assert.Equal(t, 1, clock.PendingTicks())
}

func TestEngine_OnResizeIgnoresNonPositive(t *testing.T) {
	e, _ := newTestEngine(t)

	e.OnResize(0, 600)
	e.OnResize(800, -1)

	assert.Equal(t, DefaultReferenceRadius, e.ReferenceRadius())
}

func TestEngine_OnResizeReachesResizers(t *testing.T) {
	e, _ := newTestEngine(t)
	var log []string
	m := &recorderModule{name: "view", log: &log}
	require.NoError(t, e.RegisterModule("view", m))

	e.OnResize(400, 300)

	assert.Equal(t, 400.0, m.width)
	assert.Equal(t, 300.0, m.height)
}

func TestEngine_ModuleLookup(t *testing.T) {
	e, _ := newTestEngine(t)
	counter := &renderCounter{}
	require.NoError(t, e.RegisterModule("counter", counter))

	got, err := e.Module("counter")
	require.NoError(t, err)
	assert.Same(t, counter, got)

	_, err = e.Module("missing")
	assert.ErrorIs(t, err, domain.ErrModuleNotFound)
}

func TestEngine_InteractionWiredToStore(t *testing.T) {
	e, _ := newTestEngine(t)

	e.Interaction().Wheel(2)
	assert.InDelta(t, 1.1, e.State().Zoom, 1e-12)
}

func TestEngine_ShutdownClosesModulesOnce(t *testing.T) {
	e, _ := newTestEngine(t)
	var log []string
	m := &recorderModule{name: "audio", log: &log}
	require.NoError(t, e.RegisterModule("audio", m))

	e.Shutdown()
	e.Shutdown()

	assert.Equal(t, []string{"audio.close"}, log)
	assert.ErrorIs(t, e.RegisterModule("late", &renderCounter{}), domain.ErrEngineClosed)
}
