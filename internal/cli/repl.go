package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/format"
	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/parallel"
	"github.com/agbru/picalc/internal/ui"
)

// REPLConfig holds the initial settings of an interactive session.
type REPLConfig struct {
	DefaultAlgo string
	Steps       int64
	Workers     int
	MaxWorkers  int
	Schedule    parallel.Schedule
	ChunkSize   int64
	// Timeout bounds each run or comparison.
	Timeout time.Duration
}

// REPL is an interactive session over the registered integrators.
type REPL struct {
	config   REPLConfig
	factory  integration.Factory
	strategy string
	in       io.Reader
	out      io.Writer
	reporter orchestration.ProgressReporter
}

// NewREPL creates a session. An empty or "all" default strategy selects
// post-reduction.
func NewREPL(factory integration.Factory, cfg REPLConfig) *REPL {
	strategy := cfg.DefaultAlgo
	if strategy == "" || strategy == config.DefaultAlgo {
		strategy = integration.PostReduction.String()
	}
	if cfg.Steps <= 0 {
		cfg.Steps = integration.DefaultSteps
	}
	if cfg.Workers <= 0 {
		cfg.Workers = config.EstimateOptimalWorkers(cfg.MaxWorkers)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultTimeout
	}
	return &REPL{
		config:   cfg,
		factory:  factory,
		strategy: strategy,
		in:       os.Stdin,
		out:      os.Stdout,
		reporter: CLIProgressReporter{},
	}
}

// SetInput sets the command source.
func (r *REPL) SetInput(in io.Reader) { r.in = in }

// SetOutput sets the output writer.
func (r *REPL) SetOutput(out io.Writer) { r.out = out }

// SetProgressReporter replaces the spinner, e.g. with a silent reporter.
func (r *REPL) SetProgressReporter(p orchestration.ProgressReporter) { r.reporter = p }

// Start reads and executes commands until exit or EOF. Cancelling ctx ends
// the session after the current command.
func (r *REPL) Start(ctx context.Context) {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for ctx.Err() == nil {
		fmt.Fprint(r.out, ui.ColorGreen()+"pi> "+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}
		if line := strings.TrimSpace(input); line != "" {
			if !r.processCommand(ctx, line) {
				return
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %sπ Riemann-Sum Integrator - Interactive Mode%s          %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %srun [steps]%s        - Integrate with the current strategy\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %scompare [steps]%s    - Run every strategy and check agreement\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %ssteps <n>%s          - Set the number of steps\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sworkers <n>%s        - Set the requested worker count\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstrategy <name>%s    - Change strategy (%s)\n", ui.ColorYellow(), ui.ColorReset(), strings.Join(r.factory.List(), ", "))
	fmt.Fprintf(r.out, "  %sschedule <name>%s    - Runtime-reduction schedule (%s)\n", ui.ColorYellow(), ui.ColorReset(), strings.Join(parallel.Schedules(), ", "))
	fmt.Fprintf(r.out, "  %slist%s               - List strategies\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s             - Display current settings\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s               - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s        - Leave interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
}

// processCommand executes one command line. It returns false on exit.
func (r *REPL) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "run", "r":
		if r.applyStepsArg(args) {
			r.run(ctx, []string{r.strategy})
		}
	case "compare", "cmp":
		if r.applyStepsArg(args) {
			r.run(ctx, r.factory.List())
		}
	case "steps", "n":
		r.cmdSteps(args)
	case "workers", "w":
		r.cmdWorkers(args)
	case "strategy", "algo", "s":
		r.cmdStrategy(args)
	case "schedule":
		r.cmdSchedule(args)
	case "list", "ls":
		r.cmdList()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		if n, err := parseSteps(cmd); err == nil {
			r.config.Steps = n
			r.run(ctx, []string{r.strategy})
			return true
		}
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
	}
	return true
}

// parseSteps accepts plain integers and underscores as digit separators.
func parseSteps(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, 64)
	if err != nil {
		return 0, err
	}
	if n <= 0 || n > config.MaxStepsValue {
		return 0, fmt.Errorf("steps must be between 1 and %d", config.MaxStepsValue)
	}
	return n, nil
}

func (r *REPL) applyStepsArg(args []string) bool {
	if len(args) == 0 {
		return true
	}
	n, err := parseSteps(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid steps %q: %v%s\n", ui.ColorRed(), args[0], err, ui.ColorReset())
		return false
	}
	r.config.Steps = n
	return true
}

func (r *REPL) run(ctx context.Context, keys []string) {
	var integrators []integration.Integrator
	for _, k := range keys {
		if i, err := r.factory.Get(k); err == nil {
			integrators = append(integrators, i)
		}
	}
	if len(integrators) == 0 {
		fmt.Fprintf(r.out, "%sNo strategy to run%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	fmt.Fprintf(r.out, "Integrating with %s%s%s steps on %s%d%s workers...\n",
		ui.ColorMagenta(), format.FormatSteps(r.config.Steps), ui.ColorReset(),
		ui.ColorCyan(), r.config.Workers, ui.ColorReset())

	results := orchestration.ExecuteIntegrations(ctx, integrators, orchestration.Job{
		Steps:      r.config.Steps,
		Workers:    r.config.Workers,
		MaxWorkers: r.config.MaxWorkers,
		Schedule:   r.config.Schedule,
		ChunkSize:  r.config.ChunkSize,
	}, r.reporter, r.out)

	ref := orchestration.SelectReference(results)
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────────────────────%s\n", ui.ColorCyan(), ui.ColorReset())
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(r.out, "  %s%-20s%s: %sError - %v%s\n",
				ui.ColorYellow(), res.Name, ui.ColorReset(), ui.ColorRed(), res.Err, ui.ColorReset())
			continue
		}
		status := ui.ColorGreen() + "✓" + ui.ColorReset()
		if ref != nil && !orchestration.Agrees(res, *ref) {
			status = ui.ColorRed() + "✗ DISAGREES" + ui.ColorReset()
		}
		fmt.Fprintf(r.out, "  %s%-20s%s: %s%.15f%s  %12s  err %.2e  %s\n",
			ui.ColorYellow(), res.Name, ui.ColorReset(),
			ui.ColorGreen(), res.Result.Value, ui.ColorReset(),
			format.FormatExecutionDuration(res.Duration),
			math.Abs(res.Result.Value-math.Pi), status)
	}
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────────────────────%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

func (r *REPL) cmdSteps(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: steps <n>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	if r.applyStepsArg(args) {
		fmt.Fprintf(r.out, "Steps set to: %s%s%s\n", ui.ColorGreen(), format.FormatSteps(r.config.Steps), ui.ColorReset())
	}
}

func (r *REPL) cmdWorkers(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: workers <n>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		fmt.Fprintf(r.out, "%sInvalid worker count: %s%s\n", ui.ColorRed(), args[0], ui.ColorReset())
		return
	}
	r.config.Workers = n
	fmt.Fprintf(r.out, "Workers set to: %s%d%s (granted at most %d)\n",
		ui.ColorGreen(), n, ui.ColorReset(), integration.HardwareConcurrency())
}

func (r *REPL) cmdStrategy(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: strategy <name>%s\n", ui.ColorRed(), ui.ColorReset())
		fmt.Fprintf(r.out, "Available strategies: %s\n", strings.Join(r.factory.List(), ", "))
		return
	}
	st, err := integration.ParseStrategy(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(r.out, "%sUnknown strategy: %s%s\n", ui.ColorRed(), strings.Join(args, " "), ui.ColorReset())
		fmt.Fprintf(r.out, "Available strategies: %s\n", strings.Join(r.factory.List(), ", "))
		return
	}
	r.strategy = st.String()
	fmt.Fprintf(r.out, "Strategy changed to: %s%s%s\n", ui.ColorGreen(), st.DisplayName(), ui.ColorReset())
}

func (r *REPL) cmdSchedule(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: schedule <name>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	s, err := parallel.ParseSchedule(strings.ToLower(args[0]))
	if err != nil {
		fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	r.config.Schedule = s
	fmt.Fprintf(r.out, "Schedule set to: %s%s%s\n", ui.ColorGreen(), s, ui.ColorReset())
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable strategies:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, key := range r.factory.List() {
		integ, err := r.factory.Get(key)
		if err != nil {
			continue
		}
		marker := "  "
		if key == r.strategy {
			marker = ui.ColorGreen() + "► " + ui.ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-8s%s - %s\n", marker, ui.ColorYellow(), key, ui.ColorReset(), integ.Name())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent settings:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Strategy:   %s%s%s\n", ui.ColorCyan(), r.strategy, ui.ColorReset())
	fmt.Fprintf(r.out, "  Steps:      %s%s%s\n", ui.ColorCyan(), format.FormatSteps(r.config.Steps), ui.ColorReset())
	fmt.Fprintf(r.out, "  Workers:    %s%d%s\n", ui.ColorCyan(), r.config.Workers, ui.ColorReset())
	fmt.Fprintf(r.out, "  Schedule:   %s%s%s\n", ui.ColorCyan(), r.config.Schedule, ui.ColorReset())
	fmt.Fprintf(r.out, "  Timeout:    %s%s%s\n", ui.ColorCyan(), r.config.Timeout, ui.ColorReset())
	fmt.Fprintln(r.out)
}
