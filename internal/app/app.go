// Package app provides application-level orchestration and dependency injection.
// This package wires the engine, its modules and the window together and
// manages the application lifecycle.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/tejashwikalptaru/harmonia/internal/adapter/audio/otosynth"
	"github.com/tejashwikalptaru/harmonia/internal/adapter/export/wavfile"
	"github.com/tejashwikalptaru/harmonia/internal/adapter/renderer/fyneview"
	"github.com/tejashwikalptaru/harmonia/internal/adapter/repository/prefs"
	"github.com/tejashwikalptaru/harmonia/internal/adapter/sched"
	"github.com/tejashwikalptaru/harmonia/internal/domain"
	"github.com/tejashwikalptaru/harmonia/internal/engine"
	"github.com/tejashwikalptaru/harmonia/internal/logger"
	"github.com/tejashwikalptaru/harmonia/internal/ports"
)

// Module names used with the engine registry.
const (
	ModuleRenderer = "renderer"
	ModuleAudio    = "audio"
)

const (
	defaultWindowWidth  = 900
	defaultWindowHeight = 700
)

// Application is the root structure that holds all dependencies. It follows
// constructor-based dependency injection: everything is wired in
// NewApplication and torn down in Shutdown.
type Application struct {
	logger  *slog.Logger
	fyneApp fyne.App
	window  fyne.Window

	engine       *engine.Engine
	settingsRepo ports.SettingsRepository
	exporter     *wavfile.Exporter

	view  *fyneview.View
	synth *otosynth.Synth
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// SampleRate is the offline export sample rate
	SampleRate int

	// Headless skips the window and the audio device. Used by tests and
	// render-only tooling; the engine is still fully wired.
	Headless bool

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// Scheduler overrides the frame clock (nil for the real 60 Hz ticker)
	Scheduler ports.TickScheduler

	// Seed seeds the random phase policy (0 for a clock-derived seed)
	Seed int64

	// TestFyneApp allows injecting a test Fyne app (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:      "com.harmonia.app",
		AppName:    "Harmonia",
		SampleRate: wavfile.DefaultSampleRate,
		LogLevel:   loggerCfg.Level,
	}
}

// NewApplication creates a new application with all dependencies wired.
func NewApplication(config Config) (*Application, error) {
	app := &Application{}

	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	app.logger = logger.NewLogger(logger.Config{
		Level:  config.LogLevel,
		Format: "text",
	})
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("app_name", config.AppName),
		slog.String("version", GetVersionInfo().FullString()))

	app.settingsRepo = prefs.NewSettingsRepository(app.fyneApp.Preferences())

	scheduler := config.Scheduler
	if scheduler == nil {
		scheduler = sched.NewTicker(sched.DefaultInterval)
	}

	initial, err := app.loadSavedState()
	if err != nil {
		// Non-fatal - just log and start from defaults
		app.logger.Warn("failed to load saved settings", slog.Any("error", err))
	}

	eng, err := engine.New(engine.Config{
		Logger:    app.logger.With(slog.String("component", "engine")),
		Scheduler: scheduler,
		Initial:   initial,
		Seed:      config.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	app.engine = eng

	app.exporter = wavfile.NewExporter(
		app.logger.With(slog.String("component", "export")),
		config.SampleRate,
	)

	if !config.Headless {
		app.synth = otosynth.New(
			app.logger.With(slog.String("component", "audio")),
			app.engine,
		)
		if err := app.engine.RegisterModule(ModuleAudio, app.synth); err != nil {
			return nil, fmt.Errorf("failed to register audio module: %w", err)
		}

		app.view = fyneview.NewView(
			app.logger.With(slog.String("component", "renderer")),
			app.engine,
			app.engine.Interaction(),
			app.engine.Toggle,
		)
		if err := app.engine.RegisterModule(ModuleRenderer, app.view); err != nil {
			return nil, fmt.Errorf("failed to register renderer module: %w", err)
		}

		app.window = app.fyneApp.NewWindow(config.AppName)
		app.window.SetContent(app.view)
		app.window.Resize(fyne.NewSize(defaultWindowWidth, defaultWindowHeight))

		// Persist settings even when quitting via the window close button
		app.window.SetCloseIntercept(func() {
			if err := app.saveState(); err != nil {
				app.logger.Warn("failed to save settings on close", slog.Any("error", err))
			}
			app.window.Close()
		})
	}

	return app, nil
}

// Engine exposes the wired engine for UI code and tests.
func (a *Application) Engine() *engine.Engine {
	return a.engine
}

// ExportWAV renders the current harmonic series to a WAV file.
func (a *Application) ExportWAV(path string, duration time.Duration) error {
	return a.exporter.Export(path, a.engine.State(), a.engine.Harmonics(), duration)
}

// loadSavedState restores the settings from the previous session. A nil
// state with nil error means nothing was saved yet.
func (a *Application) loadSavedState() (*domain.State, error) {
	state, err := a.settingsRepo.Load()
	if err != nil {
		if errors.Is(err, domain.ErrNoSettings) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

// saveState persists the current settings.
func (a *Application) saveState() error {
	return a.settingsRepo.Save(a.engine.State())
}

// Run initializes the registered modules and shows the window, blocking
// until it closes. In headless mode it only initializes the modules; the
// caller drives the engine directly.
func (a *Application) Run() {
	a.engine.InitializeModules()
	a.logger.Info("application started")

	if a.window != nil {
		a.window.ShowAndRun()
	}
}

// Shutdown gracefully shuts down the application. Safe to call more than
// once; should be deferred in main.go.
func (a *Application) Shutdown() {
	a.logger.Info("shutting down application")

	if err := a.saveState(); err != nil {
		a.logger.Warn("failed to save settings", slog.Any("error", err))
	}

	a.engine.Shutdown()
	a.logger.Info("application shutdown complete")
}
