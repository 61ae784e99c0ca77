package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Data errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrEmptyBatch       = errors.New("batch contains no pairs")
	ErrInvalidTable     = errors.New("invalid contingency table")
	ErrInvalidSeries    = errors.New("invalid time series")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid scoring configuration")

	// Numeric errors
	ErrNumericOverflow = errors.New("numeric overflow during scoring")

	// Determinism errors
	ErrFingerprintMismatch = errors.New("batch fingerprint mismatch")
)

// NewValidationError builds a field-scoped configuration error
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason)
}

// NewInsufficientDataError annotates ErrInsufficientData with the failing analysis
func NewInsufficientDataError(analysis string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInsufficientData, analysis, reason)
}

// NewOverflowError annotates ErrNumericOverflow with the drug/event pair
func NewOverflowError(drug, event string, err error) error {
	return fmt.Errorf("%w: pair %s/%s: %v", ErrNumericOverflow, drug, event, err)
}

// Error checking helpers
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsOverflowError(err error) bool {
	return errors.Is(err, ErrNumericOverflow)
}
