// Package ports defines the settings persistence interface.
package ports

import "github.com/tejashwikalptaru/harmonia/internal/domain"

// SettingsRepository persists a snapshot of the engine state between
// sessions. The engine itself has no durability requirements; persistence
// is an external collaborator that reads State and writes via Update.
type SettingsRepository interface {
	// Save persists the given state snapshot.
	Save(state domain.State) error

	// Load retrieves the saved snapshot. Returns domain.ErrNoSettings when
	// nothing has been saved yet.
	Load() (domain.State, error)

	// Clear removes any saved snapshot.
	Clear() error
}
