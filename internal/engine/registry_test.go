package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/harmonia/internal/domain"
	"github.com/tejashwikalptaru/harmonia/internal/logger"
)

// recorderModule implements the full capability set and records calls into
// a shared log so fan-out order is observable.
type recorderModule struct {
	name    string
	log     *[]string
	initErr error

	lastState   domain.State
	lastChanges domain.ChangeSet
	width       float64
	height      float64
}

func (m *recorderModule) Initialize() error {
	*m.log = append(*m.log, m.name+".init")
	return m.initErr
}

func (m *recorderModule) OnStateUpdate(state domain.State, changes domain.ChangeSet) {
	m.lastState = state
	m.lastChanges = changes
	*m.log = append(*m.log, m.name+".state")
}

func (m *recorderModule) OnResize(w, h float64) {
	m.width, m.height = w, h
	*m.log = append(*m.log, m.name+".resize")
}

func (m *recorderModule) OnStart() { *m.log = append(*m.log, m.name+".start") }
func (m *recorderModule) OnStop()  { *m.log = append(*m.log, m.name+".stop") }
func (m *recorderModule) Render()  { *m.log = append(*m.log, m.name+".render") }

func (m *recorderModule) Close() error {
	*m.log = append(*m.log, m.name+".close")
	return nil
}

// panickyModule blows up in every hook it implements.
type panickyModule struct{}

func (panickyModule) Render() { panic("render boom") }

func (panickyModule) OnStateUpdate(domain.State, domain.ChangeSet) { panic("state boom") }

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry(logger.NewTestLogger())
	var log []string
	m := &recorderModule{name: "renderer", log: &log}

	require.NoError(t, r.Register("renderer", m))

	got, err := r.Get("renderer")
	require.NoError(t, err)
	assert.Same(t, m, got)
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := NewRegistry(logger.NewTestLogger())
	var log []string

	require.NoError(t, r.Register("audio", &recorderModule{name: "a", log: &log}))
	err := r.Register("audio", &recorderModule{name: "b", log: &log})
	assert.ErrorIs(t, err, domain.ErrModuleExists)
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry(logger.NewTestLogger())

	_, err := r.Get("ghost")
	assert.ErrorIs(t, err, domain.ErrModuleNotFound)
}

func TestRegistry_FanOutInRegistrationOrder(t *testing.T) {
	r := NewRegistry(logger.NewTestLogger())
	var log []string

	require.NoError(t, r.Register("first", &recorderModule{name: "first", log: &log}))
	require.NoError(t, r.Register("second", &recorderModule{name: "second", log: &log}))

	r.Render()
	assert.Equal(t, []string{"first.render", "second.render"}, log)

	log = log[:0]
	r.NotifyStart()
	r.NotifyStop()
	assert.Equal(t, []string{"first.start", "second.start", "first.stop", "second.stop"}, log)
}

func TestRegistry_PanicDoesNotBlockOthers(t *testing.T) {
	r := NewRegistry(logger.NewTestLogger())
	var log []string

	require.NoError(t, r.Register("bomb", panickyModule{}))
	require.NoError(t, r.Register("survivor", &recorderModule{name: "survivor", log: &log}))

	assert.NotPanics(t, func() { r.Render() })
	assert.Equal(t, []string{"survivor.render"}, log)

	assert.NotPanics(t, func() {
		r.NotifyStateUpdate(domain.DefaultState(), domain.ChangeSet{})
	})
	assert.Contains(t, log, "survivor.state")
}

func TestRegistry_StateUpdateDeliversPayload(t *testing.T) {
	r := NewRegistry(logger.NewTestLogger())
	var log []string
	m := &recorderModule{name: "ui", log: &log}
	require.NoError(t, r.Register("ui", m))

	st := domain.DefaultState()
	st.HarmonicCount = 21
	cs := domain.ChangeSet{Keys: []domain.StateKey{domain.KeyHarmonicCount}, Harmonics: true}
	r.NotifyStateUpdate(st, cs)

	assert.Equal(t, 21, m.lastState.HarmonicCount)
	assert.True(t, m.lastChanges.Harmonics)
}

func TestRegistry_ResizeOnlyReachesResizers(t *testing.T) {
	r := NewRegistry(logger.NewTestLogger())
	var log []string
	m := &recorderModule{name: "view", log: &log}

	require.NoError(t, r.Register("view", m))
	require.NoError(t, r.Register("plain", struct{}{})) // no capabilities at all

	assert.NotPanics(t, func() { r.NotifyResize(800, 600) })
	assert.Equal(t, 800.0, m.width)
	assert.Equal(t, 600.0, m.height)
}

func TestRegistry_InitializeLogsErrorsAndContinues(t *testing.T) {
	r := NewRegistry(logger.NewTestLogger())
	var log []string

	require.NoError(t, r.Register("bad", &recorderModule{name: "bad", log: &log, initErr: errors.New("nope")}))
	require.NoError(t, r.Register("good", &recorderModule{name: "good", log: &log}))

	assert.NotPanics(t, func() { r.Initialize() })
	assert.Equal(t, []string{"bad.init", "good.init"}, log)
}

func TestRegistry_CloseReverseOrder(t *testing.T) {
	r := NewRegistry(logger.NewTestLogger())
	var log []string

	require.NoError(t, r.Register("first", &recorderModule{name: "first", log: &log}))
	require.NoError(t, r.Register("second", &recorderModule{name: "second", log: &log}))

	r.Close()
	assert.Equal(t, []string{"second.close", "first.close"}, log)
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry(logger.NewTestLogger())
	var log []string

	require.NoError(t, r.Register("b", &recorderModule{name: "b", log: &log}))
	require.NoError(t, r.Register("a", &recorderModule{name: "a", log: &log}))

	assert.Equal(t, []string{"b", "a"}, r.Names())
}
