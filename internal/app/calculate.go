package app

import (
	"context"
	"fmt"
	"io"

	"github.com/agbru/picalc/internal/cli"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/memory"
	"github.com/agbru/picalc/internal/metrics"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/ui"
)

// runCalculate orchestrates the execution of the CLI integration command.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	ctx, cancel := a.lifecycle(ctx)
	defer cancel()

	integrators := orchestration.GetIntegratorsToRun(a.Config.Algo, a.Factory)

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(integrators, out)
	}

	var progressReporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		progressOut = io.Discard
		progressReporter = orchestration.NullProgressReporter{}
	}

	gc := memory.NewGCController(a.Config.GCMode, a.Config.Steps)
	gc.SetLogger(a.logger())
	gc.Begin()
	results := orchestration.ExecuteIntegrations(ctx, integrators, a.job(), progressReporter, progressOut)
	gc.End()

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
	}
	code := a.analyzeResultsWithOutput(results, outputCfg, out)

	if a.Config.Details && !a.Config.Quiet {
		snap := metrics.NewMemoryCollector().Snapshot()
		cli.DisplayMemoryStats(gc.Footprint(), snap.HeapAlloc, gc.Active(), out)
	}
	return code
}

func (a *Application) analyzeResultsWithOutput(results []orchestration.RunResult, outputCfg cli.OutputConfig, out io.Writer) int {
	presenter := cli.CLIResultPresenter{}
	presOpts := orchestration.PresentationOptions{
		Steps:   a.Config.Steps,
		Verbose: a.Config.Verbose,
		Details: a.Config.Details,
	}

	analysisOut := out
	if outputCfg.Quiet {
		analysisOut = io.Discard
	}
	exitCode := orchestration.AnalyzeComparisonResults(results, presOpts, presenter, presenter, analysisOut)
	ref := orchestration.SelectReference(results)

	if exitCode != apperrors.ExitSuccess || ref == nil {
		if outputCfg.Quiet {
			a.reportQuietFailure(results, exitCode)
		}
		return exitCode
	}

	if outputCfg.Quiet {
		cli.DisplayQuietResult(out, ref.Result.Value, outputCfg.Verbose)
	}
	if err := a.saveResultIfNeeded(*ref, outputCfg); err != nil {
		return apperrors.ExitErrorGeneric
	}
	if outputCfg.OutputFile != "" && !outputCfg.Quiet {
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
			ui.ColorGreen(), ui.ColorCyan(), outputCfg.OutputFile, ui.ColorReset())
	}
	return exitCode
}

// reportQuietFailure explains a failed quiet run on ErrWriter, since stdout
// only carries the value.
func (a *Application) reportQuietFailure(results []orchestration.RunResult, exitCode int) {
	for _, r := range results {
		if r.Err != nil {
			apperrors.HandleCalculationError(r.Err, r.Duration, a.ErrWriter, nil)
			return
		}
	}
	if exitCode == apperrors.ExitErrorMismatch {
		fmt.Fprintln(a.ErrWriter, "Status: Failure. Strategies disagree.")
	}
}

func (a *Application) saveResultIfNeeded(res orchestration.RunResult, cfg cli.OutputConfig) error {
	if cfg.OutputFile == "" {
		return nil
	}
	if err := cli.WriteResultToFile(res, a.Config.Steps, cfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return err
	}
	return nil
}
