// Package prefs persists engine settings through Fyne's preferences store,
// so a saved configuration survives application restarts.
package prefs

import (
	"encoding/json"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/tejashwikalptaru/harmonia/internal/domain"
	"github.com/tejashwikalptaru/harmonia/internal/ports"
)

const settingsKey = "harmonia.settings"

// SettingsRepository implements ports.SettingsRepository on top of
// fyne.Preferences. The whole state snapshot is stored as one JSON document
// under a single key, so partial writes cannot leave mixed generations.
//
// Thread-safe: all operations protected by sync.RWMutex.
type SettingsRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewSettingsRepository creates a settings repository. The preferences
// parameter should be obtained from fyne.CurrentApp().Preferences().
func NewSettingsRepository(prefs fyne.Preferences) *SettingsRepository {
	return &SettingsRepository{
		prefs: prefs,
	}
}

// Save persists a state snapshot, replacing any previous one.
func (r *SettingsRepository) Save(state domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("prefs: marshal settings: %w", err)
	}

	r.prefs.SetString(settingsKey, string(data))
	return nil
}

// Load retrieves the saved state snapshot. Returns domain.ErrNoSettings when
// nothing has been saved yet.
func (r *SettingsRepository) Load() (domain.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := r.prefs.String(settingsKey)
	if data == "" {
		return domain.State{}, domain.ErrNoSettings
	}

	var state domain.State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return domain.State{}, fmt.Errorf("prefs: unmarshal settings: %w", err)
	}

	return state, nil
}

// Clear removes the saved snapshot.
func (r *SettingsRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(settingsKey)
	return nil
}

// Verify interface implementation
var _ ports.SettingsRepository = (*SettingsRepository)(nil)
