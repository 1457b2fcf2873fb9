package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/format"
	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/sysmon"
	"github.com/agbru/picalc/internal/ui"
)

// PrintExecutionConfig displays the step count, timeout, environment and
// parallel settings.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Integrating %s4/(1+x²)%s over [0,1] with %s%s%s steps, timeout %s%s%s.\n",
		ui.ColorMagenta(), ui.ColorReset(),
		ui.ColorMagenta(), format.FormatSteps(cfg.Steps), ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s usable processors, Go %s%s%s.\n",
		ui.ColorCyan(), integration.HardwareConcurrency(), ui.ColorReset(),
		ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	if cfg.Details {
		fmt.Fprintf(out, "Host: %s\n", sysmon.DescribeHost())
	}
	maxWorkers := "hardware"
	if cfg.MaxWorkers > 0 {
		maxWorkers = fmt.Sprintf("%d", cfg.MaxWorkers)
	}
	fmt.Fprintf(out, "Parallelism: %s%d%s workers requested (cap %s), schedule %s%s%s, %d run(s) per strategy.\n",
		ui.ColorCyan(), cfg.Workers, ui.ColorReset(), maxWorkers,
		ui.ColorCyan(), cfg.Schedule, ui.ColorReset(), cfg.Repeat)
}

// PrintExecutionMode displays whether one strategy runs or all are compared.
func PrintExecutionMode(integrators []integration.Integrator, out io.Writer) {
	var modeDesc string
	if len(integrators) > 1 {
		modeDesc = fmt.Sprintf("Sequential comparison of %d strategies", len(integrators))
	} else {
		modeDesc = fmt.Sprintf("Single run with the %s%s%s strategy",
			ui.ColorGreen(), integrators[0].Name(), ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
