// Package simerr implements the simulation core's error taxonomy. Only
// the configuration-error kind is a Go error value — every other anomaly
// (out-of-bounds insertion, empty-mass nodes, divide-by-zero recentring)
// is handled structurally and never surfaces as an error.
package simerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code identifies a configuration-error kind, modelled on the
// code/message shape of an HTTP-facing structured error.
type Code string

const (
	// ErrUnknownIntegrator is reported when an integrate.Kind value is
	// not one of the known variants.
	ErrUnknownIntegrator Code = "CONFIG_UNKNOWN_INTEGRATOR"
)

// ConfigurationError is fatal: the step that produced it must be
// terminated rather than retried. It carries the offending value and,
// via pkg/errors, a stack trace for error reporting.
type ConfigurationError struct {
	Code  Code
	Value string
	cause error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Value)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/As.
func (e *ConfigurationError) Unwrap() error {
	return e.cause
}

// NewUnknownIntegrator reports that tag is not one of the known
// integrator kinds.
func NewUnknownIntegrator(tag string) *ConfigurationError {
	return &ConfigurationError{
		Code:  ErrUnknownIntegrator,
		Value: tag,
		cause: errors.Errorf("unrecognised integrator tag %q", tag),
	}
}
