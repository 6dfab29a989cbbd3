package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidConfidence    = fmt.Errorf("%w: confidence level", ErrInvalidConfiguration)
	ErrInvalidTail          = fmt.Errorf("%w: tail", ErrInvalidConfiguration)
	ErrInvalidFormat        = fmt.Errorf("%w: report format", ErrInvalidConfiguration)

	// Sample errors
	ErrLengthMismatch   = errors.New("dependent samples must have equal length")
	ErrDegenerateSample = errors.New("degenerate sample")
	ErrEmptySample      = fmt.Errorf("%w: empty", ErrDegenerateSample)
	ErrZeroVariance     = fmt.Errorf("%w: zero variance", ErrDegenerateSample)
)

// Error constructors with context
func NewConfigurationError(field string, value interface{}) error {
	return fmt.Errorf("%w: %s %v", ErrInvalidConfiguration, field, value)
}

func NewLengthMismatchError(nx, ny int) error {
	return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, nx, ny)
}

func NewDegenerateSampleError(reason string) error {
	return fmt.Errorf("%w: %s", ErrDegenerateSample, reason)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

func IsLengthMismatch(err error) bool {
	return errors.Is(err, ErrLengthMismatch)
}

func IsDegenerateSample(err error) bool {
	return errors.Is(err, ErrDegenerateSample)
}

// IsSampleError reports whether err is caused by the shape of the input data
// rather than by how the computation was configured.
func IsSampleError(err error) bool {
	return IsLengthMismatch(err) || IsDegenerateSample(err)
}
