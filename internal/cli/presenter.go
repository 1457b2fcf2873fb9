package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/format"
	"github.com/agbru/picalc/internal/metrics"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/progress"
	"github.com/agbru/picalc/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with the
// spinner display.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for ongoing runs.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numIntegrators int, out io.Writer) {
	DisplayProgress(wg, progressChan, numIntegrators, out)
}

// CLIResultPresenter renders results for the terminal.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
	_ orchestration.ErrorHandler      = CLIResultPresenter{}
)

// PresentComparisonTable prints one row per strategy. Padding is computed
// by hand because tabwriter miscounts ANSI sequences.
func (p CLIResultPresenter) PresentComparisonTable(results []orchestration.RunResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")

	maxNameLen := len("Strategy")
	maxDurationLen := len("Duration")
	maxWorkersLen := len("Workers")
	for _, res := range results {
		maxNameLen = max(maxNameLen, len(res.Name))
		maxDurationLen = max(maxDurationLen, len(p.FormatDuration(res.Duration)))
		maxWorkersLen = max(maxWorkersLen, len(workersCell(res)))
	}

	fmt.Fprintf(out, "%sStrategy%s%s   %sWorkers%s%s   %sDuration%s%s   %sValue%s%s   %sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxNameLen-len("Strategy")),
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxWorkersLen-len("Workers")),
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxDurationLen-len("Duration")),
		ui.ColorUnderline(), ui.ColorReset(), padRight("", valueWidth-len("Value")),
		ui.ColorUnderline(), ui.ColorReset())

	for _, res := range results {
		var status, value string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
			value = padRight("-", valueWidth-1)
		} else {
			status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
			if len(res.Values) > 1 && !res.Reproducible() {
				status += fmt.Sprintf(" %s(varies across %d runs)%s", ui.ColorYellow(), len(res.Values), ui.ColorReset())
			}
			value = fmt.Sprintf("%.15f", res.Result.Value)
		}
		duration := p.FormatDuration(res.Duration)
		workers := workersCell(res)
		fmt.Fprintf(out, "%s%s%s%s   %s%s   %s%s%s%s   %s   %s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(), padRight("", maxNameLen-len(res.Name)),
			workers, padRight("", maxWorkersLen-len(workers)),
			ui.ColorYellow(), duration, ui.ColorReset(), padRight("", maxDurationLen-len(duration)),
			value, status)
	}
}

// valueWidth is the width of a %.15f rendering of a value in [0, 10).
const valueWidth = 17

func workersCell(res orchestration.RunResult) string {
	if res.Err != nil {
		return "-"
	}
	return fmt.Sprintf("%d/%d", res.Result.Workers, res.Result.RequestedWorkers)
}

func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// PresentResult displays the reference result.
func (CLIResultPresenter) PresentResult(result orchestration.RunResult, opts orchestration.PresentationOptions, out io.Writer) {
	DisplayResult(result, opts, out)
}

// FormatDuration formats a duration, showing "< 1µs" for zero.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// HandleError prints err and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, CLIColorProvider{})
}

// DisplayMemoryStats shows what the runs cost the allocator.
func DisplayMemoryStats(fp metrics.RunFootprint, heapAlloc uint64, gcSuspended bool, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Heap in use:     %s\n", format.FormatBytes(heapAlloc))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(fp.Allocated))
	fmt.Fprintf(out, "  GC cycles:       %d\n", fp.GCCycles)
	switch {
	case fp.PauseNs > 0:
		fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(fp.PauseNs)/1e6)
	case gcSuspended:
		fmt.Fprintf(out, "  GC pause total:  0ms (GC suspended)\n")
	default:
		fmt.Fprintf(out, "  GC pause total:  0ms\n")
	}
}
