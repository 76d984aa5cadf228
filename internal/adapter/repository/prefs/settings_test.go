package prefs

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tejashwikalptaru/harmonia/internal/domain"
)

// Helper to create a test settings repository
func newTestSettingsRepository() *SettingsRepository {
	app := test.NewApp()
	prefs := app.Preferences()

	return NewSettingsRepository(prefs)
}

func TestSettingsRepository_SaveAndLoad(t *testing.T) {
	repo := newTestSettingsRepository()

	state := domain.DefaultState()
	state.HarmonicCount = 16
	state.SeriesType = domain.SeriesFibonacci
	state.Zoom = 2.5
	state.Shapes.Spokes.Visible = false
	state.Shapes.Waveform.Color = "#ff8800"

	require.NoError(t, repo.Save(state))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestSettingsRepository_LoadWithoutSave(t *testing.T) {
	repo := newTestSettingsRepository()

	_, err := repo.Load()
	assert.ErrorIs(t, err, domain.ErrNoSettings)
}

func TestSettingsRepository_SaveOverwritesPrevious(t *testing.T) {
	repo := newTestSettingsRepository()

	first := domain.DefaultState()
	first.AxisCount = 6
	require.NoError(t, repo.Save(first))

	second := domain.DefaultState()
	second.AxisCount = 48
	require.NoError(t, repo.Save(second))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, 48, loaded.AxisCount)
}

func TestSettingsRepository_Clear(t *testing.T) {
	repo := newTestSettingsRepository()

	require.NoError(t, repo.Save(domain.DefaultState()))
	require.NoError(t, repo.Clear())

	_, err := repo.Load()
	assert.ErrorIs(t, err, domain.ErrNoSettings)
}

func TestSettingsRepository_CorruptPayload(t *testing.T) {
	app := test.NewApp()
	prefs := app.Preferences()
	prefs.SetString(settingsKey, "{not json")

	repo := NewSettingsRepository(prefs)

	_, err := repo.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoSettings)
}
