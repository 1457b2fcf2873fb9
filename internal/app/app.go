package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/picalc/internal/calibration"
	"github.com/agbru/picalc/internal/cli"
	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/tui"
	"github.com/agbru/picalc/internal/ui"
)

// Application represents the picalc application instance.
type Application struct {
	Config    config.AppConfig
	Factory   integration.Factory
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom integrator factory for the application.
func WithFactory(f integration.Factory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// New creates a new Application instance by parsing command-line arguments.
// Configuration errors are printed to errWriter; --help yields flag.ErrHelp.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = integration.NewDefaultFactory()
	}

	programName := "picalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Factory.List())
	if err != nil {
		var cfgErr apperrors.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(errWriter, "Error: %v\n", cfgErr)
		}
		return nil, err
	}

	if cfgWithProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
		cfg = cfgWithProfile
	} else {
		cfg = config.ApplyAdaptiveWorkers(cfg)
	}

	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	zerolog.SetGlobalLevel(a.Config.ZerologLevel())
	ui.InitTheme(a.Config.NoColor)

	switch {
	case a.Config.Calibrate:
		return a.runCalibration(ctx, out)
	case a.Config.Hello:
		return a.runHello(ctx, out)
	case a.Config.ServerAddr != "":
		return a.runServer(ctx, out)
	case a.Config.Interactive:
		return a.runREPL(ctx, out)
	case a.Config.TUI:
		return a.runTUI(ctx, out)
	}
	return a.runCalculate(ctx, out)
}

// logger returns the diagnostic logger. It writes to ErrWriter so that
// stdout carries only results.
func (a *Application) logger() zerolog.Logger {
	return logging.NewLogger(a.ErrWriter, "picalc").Zerolog()
}

// job builds the orchestration job from the configuration.
func (a *Application) job() orchestration.Job {
	l := a.logger()
	return orchestration.Job{
		Steps:      a.Config.Steps,
		Workers:    a.Config.Workers,
		MaxWorkers: a.Config.MaxWorkers,
		Schedule:   a.Config.ScheduleValue(),
		ChunkSize:  a.Config.ChunkSize,
		Repeat:     a.Config.Repeat,
		Logger:     &l,
	}
}

// lifecycle bounds ctx by the configured timeout and SIGINT/SIGTERM.
func (a *Application) lifecycle(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, func() {
		stopSignals()
		cancelTimeout()
	}
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runCalibration runs the full calibration mode.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	opts := calibration.Options{
		ProfilePath: a.Config.CalibrationProfile,
		Logger:      a.logger(),
	}
	return calibration.RunCalibration(ctx, out, opts, cli.CLIProgressReporter{}, cli.CLIColorProvider{})
}

// runTUI launches the interactive TUI dashboard.
func (a *Application) runTUI(ctx context.Context, _ io.Writer) int {
	ctx, cancel := a.lifecycle(ctx)
	defer cancel()

	integrators := orchestration.GetIntegratorsToRun(a.Config.Algo, a.Factory)
	job := a.job()
	// Log lines would corrupt the alternate screen.
	nop := zerolog.Nop()
	job.Logger = &nop
	return tui.Run(ctx, integrators, job, a.Config, Version)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
