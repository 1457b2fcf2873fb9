package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/agbru/picalc/internal/integration"
)

// ColorProvider supplies the ANSI sequences used when printing errors.
// A nil provider prints without colors.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

type noColors struct{}

func (noColors) Red() string    { return "" }
func (noColors) Yellow() string { return "" }
func (noColors) Reset() string  { return "" }

// HandleCalculationError prints a user-facing description of a failed run and
// returns the matching exit code. A nil error yields ExitSuccess.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = noColors{}
	}
	suffix := ""
	if duration > 0 {
		suffix = fmt.Sprintf(" after %s", duration)
	}

	var integrandErr *integration.IntegrandError
	var configErr ConfigError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "%sStatus: Failure (Timeout). The execution limit was reached%s.%s\n",
			colors.Red(), suffix, colors.Reset())
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), suffix, colors.Reset())
		return ExitErrorCanceled
	case errors.As(err, &integrandErr):
		fmt.Fprintf(out, "%sStatus: Failure. The integrand faulted on worker %d at index %d (x=%g): %v%s\n",
			colors.Red(), integrandErr.Worker, integrandErr.Index, integrandErr.X, integrandErr.Cause, colors.Reset())
		return ExitErrorIntegrand
	case errors.Is(err, integration.ErrInvalidConfiguration), errors.As(err, &configErr):
		fmt.Fprintf(out, "%sStatus: Invalid configuration: %v%s\n", colors.Red(), err, colors.Reset())
		return ExitErrorConfig
	default:
		fmt.Fprintf(out, "%sStatus: Failure. Unexpected error: %v%s\n", colors.Red(), err, colors.Reset())
		return ExitErrorGeneric
	}
}
