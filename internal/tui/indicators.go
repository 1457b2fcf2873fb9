package tui

import (
	"math"
	"time"

	"github.com/agbru/picalc/internal/orchestration"
)

// Indicators summarizes the accuracy and speed of a run.
type Indicators struct {
	// StepsPerSecond is the sample-point throughput.
	StepsPerSecond float64
	// AbsError is |value - π|. It is NaN for live estimates.
	AbsError float64
	// RelError is AbsError / π.
	RelError float64
	// Workers is the number of workers granted.
	Workers int
	// Requested is the number of workers asked for.
	Requested int
	// Reproducible reports whether every repetition produced the same bits.
	Reproducible bool
	// Final is false for estimates computed from progress.
	Final bool
}

// ComputeLive estimates throughput from the fraction of steps done so far.
func ComputeLive(steps int64, progress float64, elapsed time.Duration) *Indicators {
	ind := &Indicators{AbsError: math.NaN(), RelError: math.NaN()}
	if s := elapsed.Seconds(); s > 0 && progress > 0 {
		ind.StepsPerSecond = float64(steps) * progress / s
	}
	return ind
}

// ComputeFinal derives indicators from a completed run.
func ComputeFinal(res orchestration.RunResult, steps int64) *Indicators {
	ind := &Indicators{
		AbsError:     math.Abs(res.Result.Value - math.Pi),
		Workers:      res.Result.Workers,
		Requested:    res.Result.RequestedWorkers,
		Reproducible: res.Reproducible(),
		Final:        true,
	}
	ind.RelError = ind.AbsError / math.Pi
	if s := res.Duration.Seconds(); s > 0 {
		ind.StepsPerSecond = float64(steps) / s
	}
	return ind
}
