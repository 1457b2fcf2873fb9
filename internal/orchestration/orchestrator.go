package orchestration

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/parallel"
	"github.com/agbru/picalc/internal/progress"
)

// ProgressBufferMultiplier sizes the progress channel per integrator so a
// slow display rarely causes dropped intermediate updates.
const ProgressBufferMultiplier = 5

// ProgressLogThreshold is the progress advance between two debug log lines
// for the same integrator.
const ProgressLogThreshold = 0.1

// Job describes the work shared by every integrator in a run.
type Job struct {
	// Steps is the number of sample points.
	Steps int64
	// Integrand defaults to integration.PiIntegrand when nil.
	Integrand integration.Integrand
	// Workers is the requested pool size.
	Workers int
	// MaxWorkers caps the granted pool size; 0 means hardware concurrency.
	MaxWorkers int
	// Schedule and ChunkSize configure the runtime-reduction strategy.
	Schedule  parallel.Schedule
	ChunkSize int64
	// Repeat is the number of runs per strategy. Values below 1 mean 1.
	Repeat int
	// Recorder, if set, observes every run.
	Recorder Recorder
	// Logger receives run-level debug events.
	Logger *zerolog.Logger
}

func (j Job) repeat() int {
	return max(j.Repeat, 1)
}

// ExecuteIntegrations runs each integrator job.Repeat times and collects the
// results in input order.
//
// Integrators run one at a time so that each gets the whole machine and the
// timings are comparable. Once ctx is done, integrators that have not started
// are skipped and report ctx.Err(); a run that is already computing finishes.
func ExecuteIntegrations(ctx context.Context, integrators []integration.Integrator, job Job, reporter ProgressReporter, out io.Writer) []RunResult {
	results := make([]RunResult, len(integrators))
	progressChan := make(chan progress.ProgressUpdate, len(integrators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, len(integrators), out)

	subject := progress.NewProgressSubject()
	subject.Register(progress.NewChannelObserver(progressChan))
	if job.Logger != nil {
		subject.Register(progress.NewLoggingObserver(*job.Logger, ProgressLogThreshold))
	}

	var g errgroup.Group
	g.SetLimit(1)
	for i, integ := range integrators {
		g.Go(func() error {
			results[i] = runOne(ctx, integ, job, subject.Freeze(i))
			return nil
		})
	}
	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

func runOne(ctx context.Context, integ integration.Integrator, job Job, send progress.ProgressCallback) RunResult {
	res := RunResult{Name: integ.Name(), Strategy: integ.Strategy()}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	spec := integration.Spec{NumSteps: job.Steps, Integrand: job.Integrand}
	repeat := job.repeat()
	logger := zerolog.Nop()
	if job.Logger != nil {
		logger = *job.Logger
	}

	for r := range repeat {
		if r > 0 && ctx.Err() != nil {
			res.Err = ctx.Err()
			break
		}
		// Repetitions share one progress bar.
		base := float64(r)
		onProgress := func(v float64) { send((base + v) / float64(repeat)) }

		out, err := integ.Integrate(ctx, spec, job.Workers,
			integration.WithProgress(onProgress),
			integration.WithConcurrencyLimit(job.MaxWorkers),
			integration.WithSchedule(job.Schedule, job.ChunkSize),
			integration.WithLogger(logger),
		)
		if job.Recorder != nil {
			job.Recorder.RecordRun(integ.Strategy().String(), out.Workers, out.Elapsed, err)
		}
		if err != nil {
			res.Err = apperrors.CalculationError{Strategy: integ.Strategy().String(), Cause: err}
			res.Result = integration.Result{}
			break
		}
		res.Result = out
		res.Values = append(res.Values, out.Value)
		if res.Duration == 0 || out.Elapsed < res.Duration {
			res.Duration = out.Elapsed
		}
	}
	if res.Err != nil {
		res.Values = nil
	}
	return res
}

// SelectReference picks the result other results are checked against: the
// serial run if it succeeded, else the first successful deterministic
// strategy, else the first success. It returns nil when nothing succeeded.
func SelectReference(results []RunResult) *RunResult {
	var firstDeterministic, firstSuccess *RunResult
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			continue
		}
		if r.Strategy == integration.Serial {
			return r
		}
		if firstDeterministic == nil && r.Strategy.Deterministic() {
			firstDeterministic = r
		}
		if firstSuccess == nil {
			firstSuccess = r
		}
	}
	if firstDeterministic != nil {
		return firstDeterministic
	}
	return firstSuccess
}

// Agrees reports whether r is within tolerance of ref. The looser of the two
// strategy tolerances applies.
func Agrees(r, ref RunResult) bool {
	tol := max(r.Strategy.Tolerance(), ref.Strategy.Tolerance())
	want := ref.Result.Value
	diff := math.Abs(r.Result.Value - want)
	if want == 0 {
		return diff <= tol
	}
	return diff/math.Abs(want) <= tol
}

// AnalyzeComparisonResults sorts results (successes first, fastest first),
// prints the comparison table, checks every success against the reference
// and the reproducibility of deterministic strategies, and returns the exit
// code.
func AnalyzeComparisonResults(results []RunResult, opts PresentationOptions, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	presenter.PresentComparisonTable(results, out)

	ref := SelectReference(results)
	if ref == nil {
		var firstErr error
		for _, r := range results {
			if r.Err != nil {
				firstErr = r.Err
				break
			}
		}
		fmt.Fprintf(out, "\nGlobal Status: Failure. No strategy could complete the integration.\n")
		return errHandler.HandleError(firstErr, 0, out)
	}

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if !Agrees(r, *ref) {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %s (%.15g) disagrees with %s (%.15g).\n",
				r.Name, r.Result.Value, ref.Name, ref.Result.Value)
			return apperrors.ExitErrorMismatch
		}
		if r.Strategy.Deterministic() && !r.Reproducible() {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %s was not bit-reproducible across repeated runs.\n", r.Name)
			return apperrors.ExitErrorMismatch
		}
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	presenter.PresentResult(*ref, opts, out)
	return apperrors.ExitSuccess
}

// Elapsed sums the best durations of all results.
func Elapsed(results []RunResult) time.Duration {
	var total time.Duration
	for _, r := range results {
		total += r.Duration
	}
	return total
}
