package engine

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/harmonia/internal/domain"
	"github.com/tejashwikalptaru/harmonia/internal/ports"
)

// Registry holds the registered external collaborators and fans out
// lifecycle hooks to them in registration order.
//
// Each hook invocation is isolated: a panic inside one module is recovered
// and logged, and the remaining modules still receive the hook. One failing
// renderer must never block the audio module or the scheduler.
type Registry struct {
	logger *slog.Logger

	mu      sync.RWMutex
	order   []string
	modules map[string]ports.Module
}

// NewRegistry creates an empty module registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:  logger,
		modules: make(map[string]ports.Module),
	}
}

// Register adds a module under a unique name. Registration order determines
// hook fan-out order.
func (r *Registry) Register(name string, module ports.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[name]; exists {
		return domain.ErrModuleExists
	}
	r.modules[name] = module
	r.order = append(r.order, name)

	r.logger.Debug("module registered", slog.String("module", name))
	return nil
}

// Get returns the module registered under name.
func (r *Registry) Get(name string) (ports.Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[name]
	if !ok {
		return nil, domain.ErrModuleNotFound
	}
	return m, nil
}

// Names returns the registered module names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// snapshot copies the fan-out list so hooks run without holding the lock.
func (r *Registry) snapshot() []namedModule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]namedModule, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, namedModule{name: name, module: r.modules[name]})
	}
	return out
}

type namedModule struct {
	name   string
	module ports.Module
}

// call invokes fn with per-module panic recovery.
func (r *Registry) call(name, hook string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("module hook panicked",
				slog.String("module", name),
				slog.String("hook", hook),
				slog.Any("panic", rec))
		}
	}()
	fn()
}

// Initialize runs every module's Initialize hook. Initialization errors are
// logged and do not prevent the other modules from initializing.
func (r *Registry) Initialize() {
	for _, nm := range r.snapshot() {
		if init, ok := nm.module.(ports.Initializer); ok {
			name := nm.name
			r.call(name, "Initialize", func() {
				if err := init.Initialize(); err != nil {
					r.logger.Warn("module initialization failed",
						slog.Any("error", domain.NewModuleError(name, "Initialize", err)))
				}
			})
		}
	}
}

// NotifyStateUpdate fans out OnStateUpdate to every state observer.
func (r *Registry) NotifyStateUpdate(state domain.State, changes domain.ChangeSet) {
	for _, nm := range r.snapshot() {
		if obs, ok := nm.module.(ports.StateObserver); ok {
			r.call(nm.name, "OnStateUpdate", func() { obs.OnStateUpdate(state, changes) })
		}
	}
}

// NotifyResize fans out OnResize to every resizer.
func (r *Registry) NotifyResize(width, height float64) {
	for _, nm := range r.snapshot() {
		if res, ok := nm.module.(ports.Resizer); ok {
			r.call(nm.name, "OnResize", func() { res.OnResize(width, height) })
		}
	}
}

// NotifyStart fans out OnStart to every start observer.
func (r *Registry) NotifyStart() {
	for _, nm := range r.snapshot() {
		if s, ok := nm.module.(ports.StartObserver); ok {
			r.call(nm.name, "OnStart", func() { s.OnStart() })
		}
	}
}

// NotifyStop fans out OnStop to every stop observer.
func (r *Registry) NotifyStop() {
	for _, nm := range r.snapshot() {
		if s, ok := nm.module.(ports.StopObserver); ok {
			r.call(nm.name, "OnStop", func() { s.OnStop() })
		}
	}
}

// Render fans out Render to every renderer.
func (r *Registry) Render() {
	for _, nm := range r.snapshot() {
		if rend, ok := nm.module.(ports.Renderer); ok {
			r.call(nm.name, "Render", func() { rend.Render() })
		}
	}
}

// Close releases every module that holds resources, in reverse registration
// order. Errors are logged, not returned; shutdown always completes.
func (r *Registry) Close() {
	mods := r.snapshot()
	for i := len(mods) - 1; i >= 0; i-- {
		nm := mods[i]
		if c, ok := nm.module.(ports.Closer); ok {
			name := nm.name
			r.call(name, "Close", func() {
				if err := c.Close(); err != nil {
					r.logger.Warn("module close failed",
						slog.Any("error", domain.NewModuleError(name, "Close", err)))
				}
			})
		}
	}
}
