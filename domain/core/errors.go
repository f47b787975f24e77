package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInvalidInput = errors.New("invalid input")
	ErrParse        = errors.New("parse error")

	// Simulation errors
	ErrDegenerateTrial = errors.New("degenerate trial")
	ErrCancelled       = errors.New("simulation cancelled")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrHashMismatch     = errors.New("hash mismatch")
)

// Error constructors with context
func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}

func NewParseError(field string, text string, err error) error {
	return fmt.Errorf("%w: %s %q: %v", ErrParse, field, text, err)
}

func NewDegenerateTrialError(index int, area float64) error {
	return fmt.Errorf("%w: trial %d has area %g", ErrDegenerateTrial, index, area)
}

// Error checking helpers
func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrNonDeterministic) ||
		errors.Is(err, ErrHashMismatch)
}
