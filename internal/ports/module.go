// Package ports defines the interfaces between the engine core and its
// external collaborators (renderer, audio synthesizer, UI, persistence).
// The core depends only on these abstractions, never on fyne, oto, or any
// other host infrastructure.
package ports

import (
	"github.com/tejashwikalptaru/harmonia/internal/domain"
)

// Module is an external collaborator registered with the engine. A module
// exposes an optional capability set: the registry probes for each of the
// interfaces below and fans out only the hooks the module implements.
//
// Modules may read engine state and submit changes through Engine.Update,
// but must never mutate state or caches directly.
type Module any

// Initializer is implemented by modules that need one-time setup after
// registration.
type Initializer interface {
	Initialize() error
}

// StateObserver is implemented by modules that react to state changes.
// Called synchronously after every effective update, with a state copy and
// the set of changed keys.
type StateObserver interface {
	OnStateUpdate(state domain.State, changes domain.ChangeSet)
}

// Resizer is implemented by modules that depend on the host surface size.
type Resizer interface {
	OnResize(width, height float64)
}

// StartObserver is implemented by modules that react to the animation loop
// starting.
type StartObserver interface {
	OnStart()
}

// StopObserver is implemented by modules that react to the animation loop
// stopping.
type StopObserver interface {
	OnStop()
}

// Renderer is implemented by modules that draw or otherwise present on each
// tick. Render is invoked once per coalesced tick, after any lazy
// recomputation.
type Renderer interface {
	Render()
}

// Closer is implemented by modules that hold resources to release on engine
// shutdown.
type Closer interface {
	Close() error
}
