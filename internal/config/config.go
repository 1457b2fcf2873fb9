package config

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/parallel"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "PICALC_"
	// DefaultAlgo runs every registered strategy.
	DefaultAlgo = "all"
	// DefaultTimeout bounds a whole invocation.
	DefaultTimeout = 5 * time.Minute
	// DefaultCalibrationProfile is stored in the user's home directory.
	DefaultCalibrationProfile = ".picalc_calibration.json"
	// MaxStepsValue is the largest accepted step count.
	MaxStepsValue int64 = 1 << 40
)

// GC modes accepted by --gc.
const (
	GCAuto       = "auto"
	GCAggressive = "aggressive"
	GCDisabled   = "disabled"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// AppConfig is the fully resolved configuration of one invocation.
type AppConfig struct {
	// Steps is the number of Riemann-sum sample points.
	Steps int64
	// Workers is the requested worker count; 0 selects a hardware default.
	Workers int
	// MaxWorkers caps the granted pool; 0 means hardware concurrency.
	MaxWorkers int
	// Algo is a strategy key or "all".
	Algo string
	// Schedule and ChunkSize tune the runtime-reduction strategy.
	Schedule  string
	ChunkSize int64
	// Repeat runs each strategy this many times.
	Repeat  int
	Timeout time.Duration

	Verbose bool
	Details bool
	Quiet   bool
	NoColor bool

	OutputFile         string
	Calibrate          bool
	CalibrationProfile string
	TUI                bool
	Interactive        bool
	Hello              bool
	Completion         string
	ServerAddr         string
	GCMode             string
	LogLevel           string
}

// ScheduleValue returns the parsed schedule. Validate guarantees it parses.
func (c AppConfig) ScheduleValue() parallel.Schedule {
	s, _ := parallel.ParseSchedule(c.Schedule)
	return s
}

// ZerologLevel returns the parsed log level, defaulting to info.
func (c AppConfig) ZerologLevel() zerolog.Level {
	if c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

// Default returns the configuration used when no flag is given.
func Default() AppConfig {
	return AppConfig{
		Steps:    integration.DefaultSteps,
		Algo:     DefaultAlgo,
		Schedule: parallel.Static.String(),
		Repeat:   1,
		Timeout:  DefaultTimeout,
		GCMode:   GCAuto,
		LogLevel: zerolog.InfoLevel.String(),
	}
}

// ParseConfig parses args into an AppConfig, applies environment overrides
// for flags not given on the command line, and validates the result.
// A --help request returns flag.ErrHelp.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	cfg := Default()
	algoHelp := fmt.Sprintf("strategy to run: 'all' or one of [%s]", strings.Join(availableAlgos, ", "))

	fs.Int64Var(&cfg.Steps, "steps", cfg.Steps, "number of Riemann-sum sample points")
	fs.Int64Var(&cfg.Steps, "n", cfg.Steps, "shorthand for --steps")
	fs.IntVar(&cfg.Workers, "workers", 0, "requested worker count (0 = hardware default)")
	fs.IntVar(&cfg.Workers, "w", 0, "shorthand for --workers")
	fs.IntVar(&cfg.MaxWorkers, "max-workers", 0, "cap on granted workers (0 = hardware concurrency)")
	fs.StringVar(&cfg.Algo, "algo", cfg.Algo, algoHelp)
	fs.StringVar(&cfg.Schedule, "schedule", cfg.Schedule,
		fmt.Sprintf("runtime-reduction schedule [%s]", strings.Join(parallel.Schedules(), ", ")))
	fs.Int64Var(&cfg.ChunkSize, "chunk", 0, "runtime-reduction chunk size (0 = schedule default)")
	fs.IntVar(&cfg.Repeat, "repeat", cfg.Repeat, "runs per strategy, used to check reproducibility")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall time limit (e.g. 30s, 5m)")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "print the full value and error against math.Pi")
	fs.BoolVar(&cfg.Verbose, "v", false, "shorthand for --verbose")
	fs.BoolVar(&cfg.Details, "details", false, "print run details (workers, schedule, host)")
	fs.BoolVar(&cfg.Details, "d", false, "shorthand for --details")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "print only the value")
	fs.BoolVar(&cfg.Quiet, "q", false, "shorthand for --quiet")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "disable colored output")
	fs.StringVar(&cfg.OutputFile, "output", "", "write the result to this file")
	fs.StringVar(&cfg.OutputFile, "o", "", "shorthand for --output")
	fs.BoolVar(&cfg.Calibrate, "calibrate", false, "benchmark worker counts and save a profile")
	fs.StringVar(&cfg.CalibrationProfile, "calibration-profile", "", "calibration profile path (default ~/"+DefaultCalibrationProfile+")")
	fs.BoolVar(&cfg.TUI, "tui", false, "run the interactive dashboard")
	fs.BoolVar(&cfg.Interactive, "interactive", false, "start the interactive shell")
	fs.BoolVar(&cfg.Hello, "hello", false, "print one line per granted worker and exit")
	fs.StringVar(&cfg.Completion, "completion", "", "print a shell completion script ["+strings.Join(completionShells, ", ")+"]")
	fs.StringVar(&cfg.ServerAddr, "serve", "", "serve the HTTP API on this address (e.g. :8080)")
	fs.StringVar(&cfg.GCMode, "gc", cfg.GCMode, "garbage collector mode during runs [auto, aggressive, disabled]")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level [debug, info, warn, error]")

	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [options]\n\n", programName)
		fmt.Fprintf(errorWriter, "Estimates pi as the integral of 4/(1+x^2) over [0,1] with parallel strategies.\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(errorWriter, "\nEnvironment variables %s* override defaults for flags not given.\n", EnvPrefix)
	}

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	applyEnvOverrides(&cfg, fs)
	cfg.Algo = strings.ToLower(strings.TrimSpace(cfg.Algo))
	cfg.Schedule = strings.ToLower(strings.TrimSpace(cfg.Schedule))

	if err := cfg.Validate(availableAlgos); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and names. Errors are apperrors.ConfigError.
func (c AppConfig) Validate(availableAlgos []string) error {
	switch {
	case c.Steps <= 0:
		return apperrors.NewConfigError("--steps must be positive, got %d", c.Steps)
	case c.Steps > MaxStepsValue:
		return apperrors.NewConfigError("--steps must not exceed %d, got %d", MaxStepsValue, c.Steps)
	case c.Workers < 0:
		return apperrors.NewConfigError("--workers must be >= 0, got %d", c.Workers)
	case c.MaxWorkers < 0:
		return apperrors.NewConfigError("--max-workers must be >= 0, got %d", c.MaxWorkers)
	case c.ChunkSize < 0:
		return apperrors.NewConfigError("--chunk must be >= 0, got %d", c.ChunkSize)
	case c.Repeat < 1:
		return apperrors.NewConfigError("--repeat must be at least 1, got %d", c.Repeat)
	case c.Timeout <= 0:
		return apperrors.NewConfigError("--timeout must be positive, got %s", c.Timeout)
	}
	if _, err := parallel.ParseSchedule(c.Schedule); err != nil {
		return apperrors.NewConfigError("--schedule: %v", err)
	}
	if c.Algo != DefaultAlgo && !slices.Contains(availableAlgos, c.Algo) {
		return apperrors.NewConfigError("unknown algorithm %q, available: all, %s", c.Algo, strings.Join(availableAlgos, ", "))
	}
	switch c.GCMode {
	case GCAuto, GCAggressive, GCDisabled:
	default:
		return apperrors.NewConfigError("--gc must be auto, aggressive or disabled, got %q", c.GCMode)
	}
	if c.Completion != "" && !slices.Contains(completionShells, c.Completion) {
		return apperrors.NewConfigError("unsupported completion shell %q", c.Completion)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("--log-level: %v", err)
	}
	if c.TUI && c.Quiet {
		return apperrors.NewConfigError("--tui and --quiet cannot be combined")
	}
	return nil
}
