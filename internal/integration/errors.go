package integration

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration matches every InvalidConfigurationError via errors.Is.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// InvalidConfigurationError is returned before any worker starts when a run
// parameter is out of range.
type InvalidConfigurationError struct {
	Field string
	Value int64
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s must be positive, got %d", e.Field, e.Value)
}

// Is reports whether target is ErrInvalidConfiguration.
func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// IntegrandError reports a panic raised by the integrand inside a worker.
// The run that produced it returns no value.
type IntegrandError struct {
	// Worker is the index of the worker that evaluated the point.
	Worker int
	// Index is the sample index being evaluated.
	Index int64
	// X is the sample point passed to the integrand.
	X float64
	// Cause is the recovered panic value, as an error.
	Cause error
}

func (e *IntegrandError) Error() string {
	return fmt.Sprintf("integrand fault in worker %d at index %d (x=%g): %v", e.Worker, e.Index, e.X, e.Cause)
}

func (e *IntegrandError) Unwrap() error {
	return e.Cause
}

func newIntegrandError(worker int, index int64, x float64, recovered any) *IntegrandError {
	cause, ok := recovered.(error)
	if !ok {
		cause = fmt.Errorf("%v", recovered)
	}
	return &IntegrandError{Worker: worker, Index: index, X: x, Cause: cause}
}
