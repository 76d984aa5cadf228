// Package main is the production entry point for Harmonia.
//
// Harmonia is a reactive harmonic synthesis playground: a state store drives
// lazy recomputation of a harmonic series and its sampled waveform, which a
// frame loop renders to the screen and, optionally, to the speakers.
//
// Build:
//
//	go build -o build/harmonia ./cmd
//
// Run:
//
//	./build/harmonia
package main

import (
	"log"

	"github.com/tejashwikalptaru/harmonia/internal/app"
)

func main() {
	config := app.DefaultConfig()

	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure settings are saved and the engine is released
	defer application.Shutdown()

	// Blocks until the window is closed
	application.Run()
}
