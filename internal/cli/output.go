// # Naming Conventions
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult], [FormatValue].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agbru/picalc/internal/format"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet prints only the value.
	Quiet bool
	// Verbose prints the value at full precision.
	Verbose bool
}

// FormatValue renders a value with 15 decimals, or with the shortest
// representation that round-trips when verbose is set.
func FormatValue(v float64, verbose bool) string {
	if verbose {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprintf("%.15f", v)
}

// DisplayResult prints the reference result. Details add the error against
// math.Pi, the step width, throughput and reproducibility.
func DisplayResult(res orchestration.RunResult, opts orchestration.PresentationOptions, out io.Writer) {
	r := res.Result
	fmt.Fprintf(out, "\n--- Result ---\n")
	fmt.Fprintf(out, "Strategy:         %s%s%s\n", ui.ColorBlue(), res.Name, ui.ColorReset())
	fmt.Fprintf(out, "Workers:          %s%d%s granted (%d requested)\n", ui.ColorCyan(), r.Workers, ui.ColorReset(), r.RequestedWorkers)
	fmt.Fprintf(out, "Calculation time: %s%s%s\n", ui.ColorYellow(), format.FormatExecutionDuration(res.Duration), ui.ColorReset())
	fmt.Fprintf(out, "pi ≈ %s%s%s\n", ui.ColorGreen(), FormatValue(r.Value, opts.Verbose), ui.ColorReset())

	if !opts.Details {
		return
	}
	steps := r.Steps
	if steps == 0 {
		steps = opts.Steps
	}
	fmt.Fprintf(out, "\n--- Details ---\n")
	fmt.Fprintf(out, "Steps:            %s\n", format.FormatSteps(steps))
	if steps > 0 {
		fmt.Fprintf(out, "Step width h:     %.3e\n", 1/float64(steps))
	}
	fmt.Fprintf(out, "Absolute error:   %.3e\n", math.Abs(r.Value-math.Pi))
	fmt.Fprintf(out, "Relative error:   %s\n", format.FormatRelativeError(r.Value, math.Pi))
	fmt.Fprintf(out, "Throughput:       %s\n", format.FormatThroughput(steps, res.Duration.Seconds()))
	if n := len(res.Values); n > 1 {
		verdict := "bit-identical"
		if !res.Reproducible() {
			verdict = "varies"
		}
		fmt.Fprintf(out, "Repetitions:      %d (%s)\n", n, verdict)
	}
}

// FormatQuietResult is the single line printed in quiet mode.
func FormatQuietResult(value float64, verbose bool) string {
	return FormatValue(value, verbose)
}

// DisplayQuietResult prints only the value.
func DisplayQuietResult(out io.Writer, value float64, verbose bool) {
	fmt.Fprintln(out, FormatQuietResult(value, verbose))
}

// WriteResultToFile writes a run result with a commented header. An empty
// OutputFile is a no-op.
func WriteResultToFile(res orchestration.RunResult, steps int64, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# Pi Integration Result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Strategy: %s\n", res.Name)
	fmt.Fprintf(file, "# Duration: %s\n", res.Duration)
	fmt.Fprintf(file, "# Steps: %d\n", steps)
	fmt.Fprintf(file, "# Workers: %d (requested %d)\n", res.Result.Workers, res.Result.RequestedWorkers)
	fmt.Fprintf(file, "# Absolute error: %.3e\n", math.Abs(res.Result.Value-math.Pi))
	fmt.Fprintf(file, "\n")
	fmt.Fprintf(file, "pi = %s\n", strconv.FormatFloat(res.Result.Value, 'g', -1, 64))

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// DisplayResultWithConfig prints a result in the configured mode and saves
// it when an output file is set.
func DisplayResultWithConfig(out io.Writer, res orchestration.RunResult, steps int64, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, res.Result.Value, config.Verbose)
	} else {
		DisplayResult(res, orchestration.PresentationOptions{Steps: steps, Verbose: config.Verbose, Details: true}, out)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(res, steps, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}
