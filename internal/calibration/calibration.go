// Package calibration benchmarks the post-reduction strategy over candidate
// worker counts and the runtime-reduction schedules, and persists the winner
// as a host-specific profile.
package calibration

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/parallel"
	"github.com/agbru/picalc/internal/progress"
)

// DefaultCalibrationSteps keeps one candidate run well under a second on
// current hardware while staying far above the pool start-up cost.
const DefaultCalibrationSteps int64 = 20_000_000

// Options controls a calibration run.
type Options struct {
	// Steps per benchmark run; 0 means DefaultCalibrationSteps.
	Steps int64
	// Candidates are the worker counts to try; nil means GenerateWorkerCandidates.
	Candidates []int
	// Repeat keeps the best of this many runs per candidate; below 1 means 3.
	Repeat int
	// ProfilePath is where the profile is saved; empty means the default path.
	ProfilePath string
	Logger      zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Steps <= 0 {
		o.Steps = DefaultCalibrationSteps
	}
	if len(o.Candidates) == 0 {
		o.Candidates = GenerateWorkerCandidates()
	}
	if o.Repeat < 1 {
		o.Repeat = 3
	}
	o.ProfilePath = resolveProfilePath(o.ProfilePath)
	return o
}

type calibrationResult struct {
	Label    string
	Workers  int
	Granted  int
	Duration time.Duration
	Err      error
}

// Outcome is the result of Calibrate.
type Outcome struct {
	Workers       []calibrationResult
	Schedules     []calibrationResult
	BestWorkers   int
	BestSchedule  parallel.Schedule
	Profile       *CalibrationProfile
	TotalDuration time.Duration
}

// Calibrate benchmarks every candidate worker count with post-reduction,
// then every schedule with runtime reduction at the winning count. Progress
// for each benchmark is reported on its own index. Candidates run one at a
// time so each has the machine to itself.
func Calibrate(ctx context.Context, opts Options, reporter orchestration.ProgressReporter, out io.Writer) (*Outcome, error) {
	opts = opts.withDefaults()
	spec, err := integration.NewSpec(opts.Steps, nil)
	if err != nil {
		return nil, err
	}
	schedules := []parallel.Schedule{parallel.Static, parallel.Dynamic, parallel.Guided}
	total := len(opts.Candidates) + len(schedules)

	progressChan := make(chan progress.ProgressUpdate, total*orchestration.ProgressBufferMultiplier)
	var wg sync.WaitGroup
	wg.Add(1)
	go reporter.DisplayProgress(&wg, progressChan, total, out)
	defer func() {
		close(progressChan)
		wg.Wait()
	}()

	start := time.Now()
	o := &Outcome{}
	bench := func(index int, label string, workers int, strategy integration.Strategy, schedule parallel.Schedule) calibrationResult {
		res := calibrationResult{Label: label, Workers: workers}
		send := progress.ChannelCallback(progressChan, index)
		for r := range opts.Repeat {
			if err := ctx.Err(); err != nil {
				res.Err = err
				return res
			}
			base := float64(r)
			got, err := integration.Integrate(ctx, spec, workers, strategy,
				integration.WithSchedule(schedule, 0),
				integration.WithLogger(opts.Logger),
				integration.WithProgress(func(v float64) { send((base + v) / float64(opts.Repeat)) }),
			)
			if err != nil {
				res.Err = err
				return res
			}
			res.Granted = got.Workers
			if res.Duration == 0 || got.Elapsed < res.Duration {
				res.Duration = got.Elapsed
			}
		}
		opts.Logger.Debug().Str("candidate", label).Dur("best", res.Duration).Msg("calibration candidate done")
		return res
	}

	for i, w := range opts.Candidates {
		res := bench(i, fmt.Sprintf("%d workers", w), w, integration.PostReduction, parallel.Static)
		o.Workers = append(o.Workers, res)
	}
	o.BestWorkers = fastest(o.Workers)
	if o.BestWorkers == 0 {
		return o, firstError(o.Workers)
	}

	for i, s := range schedules {
		res := bench(len(opts.Candidates)+i, s.String(), o.BestWorkers, integration.RuntimeReduction, s)
		o.Schedules = append(o.Schedules, res)
	}
	o.BestSchedule = parallel.Static
	bestIdx, best := -1, time.Duration(0)
	for i, r := range o.Schedules {
		if r.Err == nil && (bestIdx < 0 || r.Duration < best) {
			bestIdx, best = i, r.Duration
		}
	}
	if bestIdx >= 0 {
		o.BestSchedule = schedules[bestIdx]
	}

	o.TotalDuration = time.Since(start)
	p := NewProfile()
	p.Host = hostDescription()
	p.OptimalWorkers = o.BestWorkers
	p.OptimalSchedule = o.BestSchedule.String()
	p.CalibrationSteps = opts.Steps
	p.CalibrationTime = o.TotalDuration.Round(time.Millisecond).String()
	o.Profile = p
	return o, nil
}

// fastest returns the worker count of the fastest successful result, or 0.
// Ties go to the smaller count.
func fastest(results []calibrationResult) int {
	best := 0
	var bestDur time.Duration
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if best == 0 || r.Duration < bestDur {
			best, bestDur = r.Workers, r.Duration
		}
	}
	return best
}

func firstError(results []calibrationResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return fmt.Errorf("no calibration candidates")
}

// RunCalibration runs a full calibration, prints the summary tables, saves
// the profile and returns the process exit code.
func RunCalibration(ctx context.Context, out io.Writer, opts Options, reporter orchestration.ProgressReporter, colors apperrors.ColorProvider) int {
	opts = opts.withDefaults()
	fmt.Fprintf(out, "--- Calibration: post-reduction over %d worker counts, %d steps ---\n", len(opts.Candidates), opts.Steps)

	outcome, err := Calibrate(ctx, opts, reporter, out)
	if err != nil {
		return apperrors.HandleCalculationError(err, 0, out, colors)
	}
	printCalibrationResults(out, outcome)

	if err := outcome.Profile.SaveProfile(opts.ProfilePath); err != nil {
		fmt.Fprintf(out, "Warning: could not save calibration profile: %v\n", err)
	} else {
		fmt.Fprintf(out, "Profile saved to %s\n", opts.ProfilePath)
	}
	printCalibrationOutput(out, outcome.Profile)
	return apperrors.ExitSuccess
}
