// Package domain defines domain-specific errors.
// These represent recoverable engine conditions; none of them is allowed to
// escape Update, a render tick, or a generator's public entry point.
package domain

import (
	"errors"
	"fmt"
)

// Common errors reported by the engine core.
var (
	// ErrInvalidHarmonicCount is reported when a requested count is outside [1,32].
	ErrInvalidHarmonicCount = errors.New("harmonic count out of range")

	// ErrUnknownSeriesType is reported when a series type is not in the table.
	ErrUnknownSeriesType = errors.New("unknown series type")

	// ErrUnknownPhasePolicy is reported when a phase policy is not in the table.
	ErrUnknownPhasePolicy = errors.New("unknown phase policy")

	// ErrModuleExists is returned when registering a module under a taken name.
	ErrModuleExists = errors.New("module already registered")

	// ErrModuleNotFound is returned when looking up an unregistered module.
	ErrModuleNotFound = errors.New("module not found")

	// ErrEngineClosed is returned when operating on a torn-down engine.
	ErrEngineClosed = errors.New("engine has been shut down")

	// ErrNoSettings is returned when no persisted settings snapshot exists.
	ErrNoSettings = errors.New("no saved settings")
)

// ParameterError describes an out-of-range or unknown-enum input that was
// recovered by clamping or falling back to a safe default.
type ParameterError struct {
	Field string
	Value any
	Err   error
}

// Error implements the error interface.
func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter %s rejected (value: %v): %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParameterError) Unwrap() error { return e.Err }

// NewParameterError creates a new ParameterError.
func NewParameterError(field string, value any, err error) *ParameterError {
	return &ParameterError{Field: field, Value: value, Err: err}
}

// ComputationError describes an unexpected failure inside a generator. The
// generator boundary substitutes a minimal fallback artifact and reports the
// condition instead of propagating.
type ComputationError struct {
	Stage   string // "harmonics" or "waveform"
	Message string
}

// Error implements the error interface.
func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed in %s: %s", e.Stage, e.Message)
}

// NewComputationError creates a new ComputationError.
func NewComputationError(stage, message string) *ComputationError {
	return &ComputationError{Stage: stage, Message: message}
}

// ModuleError describes a failure raised by a registered module's hook. The
// registry recovers it and continues with the remaining modules.
type ModuleError struct {
	Module string
	Hook   string
	Err    error
}

// Error implements the error interface.
func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %s failed in %s: %v", e.Module, e.Hook, e.Err)
}

// Unwrap returns the underlying error.
func (e *ModuleError) Unwrap() error { return e.Err }

// NewModuleError creates a new ModuleError.
func NewModuleError(module, hook string, err error) *ModuleError {
	return &ModuleError{Module: module, Hook: hook, Err: err}
}
