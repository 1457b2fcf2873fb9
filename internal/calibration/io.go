package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/picalc/internal/format"
	"github.com/agbru/picalc/internal/ui"
)

func printCalibrationResults(out io.Writer, o *Outcome) {
	printTable(out, "Workers", o.Workers, func(r calibrationResult) bool { return r.Workers == o.BestWorkers })
	printTable(out, "Schedule", o.Schedules, func(r calibrationResult) bool { return r.Label == o.BestSchedule.String() })
}

func printTable(out io.Writer, title string, results []calibrationResult, isBest func(calibrationResult) bool) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(out, "\n--- Calibration Summary: %s ---\n", title)
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %s%-12s%s │ %sGranted%s │ %sExecution Time%s\n",
		ui.ColorUnderline(), title, ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s┼%s┼%s\n", strings.Repeat("─", 14), strings.Repeat("─", 9), strings.Repeat("─", 25))
	for _, res := range results {
		durationStr := fmt.Sprintf("%sN/A%s", ui.ColorRed(), ui.ColorReset())
		if res.Err == nil {
			durationStr = format.FormatExecutionDuration(res.Duration)
		}
		highlight := ""
		if res.Err == nil && isBest(res) {
			highlight = fmt.Sprintf(" %s(Optimal)%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%-12s%s │ %7d │ %s%s%s%s\n",
			ui.ColorCyan(), res.Label, ui.ColorReset(), res.Granted,
			ui.ColorYellow(), durationStr, ui.ColorReset(), highlight)
	}
	tw.Flush()
}

func printCalibrationOutput(out io.Writer, p *CalibrationProfile) {
	fmt.Fprintf(out, "%sCalibration%s: workers=%s%d%s, schedule=%s%s%s (%s)\n",
		ui.ColorGreen(), ui.ColorReset(),
		ui.ColorYellow(), p.OptimalWorkers, ui.ColorReset(),
		ui.ColorYellow(), p.OptimalSchedule, ui.ColorReset(),
		p.CalibrationTime)
}
