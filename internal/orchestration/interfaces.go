package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/progress"
)

// RunResult is the outcome of running one strategy for a job, possibly
// several times.
type RunResult struct {
	// Name is the display name of the strategy.
	Name string
	// Strategy is the strategy that was run.
	Strategy integration.Strategy
	// Result is the last successful run. It is the zero value if Err is set.
	Result integration.Result
	// Values holds the value of every repetition, in run order.
	Values []float64
	// Duration is the best elapsed time over all repetitions.
	Duration time.Duration
	// Err is the first error encountered.
	Err error
}

// Reproducible reports whether every repetition produced the same bits.
func (r RunResult) Reproducible() bool {
	for _, v := range r.Values {
		if v != r.Values[0] {
			return false
		}
	}
	return true
}

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	Steps   int64
	Verbose bool
	Details bool
}

// ProgressReporter displays progress updates for a set of integrators.
// DisplayProgress runs in its own goroutine until progressChan is closed and
// then calls wg.Done.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer) {
	f(wg, progressChan, numCalculators, out)
}

// NullProgressReporter drains the channel without output. Used in quiet
// mode and by the server.
type NullProgressReporter struct{}

// DisplayProgress drains the channel.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter formats run results.
type ResultPresenter interface {
	// PresentComparisonTable displays the per-strategy summary table.
	PresentComparisonTable(results []RunResult, out io.Writer)
	// PresentResult displays the reference result in detail.
	PresentResult(result RunResult, opts PresentationOptions, out io.Writer)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler reports a failed run and returns its exit code.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}

// Recorder receives one observation per completed integration run.
type Recorder interface {
	RecordRun(strategy string, workers int, elapsed time.Duration, err error)
}
