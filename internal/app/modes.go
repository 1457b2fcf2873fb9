package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/agbru/picalc/internal/cli"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/server"
)

// runHello starts a worker team and prints one line per granted worker.
func (a *Application) runHello(ctx context.Context, out io.Writer) int {
	ctx, cancel := a.lifecycle(ctx)
	defer cancel()

	var mu sync.Mutex
	size, err := integration.Team(ctx, a.Config.Workers, a.Config.MaxWorkers, func(id, size int) error {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "Hello from worker %d of %d\n", id, size)
		return nil
	})
	if err != nil {
		return apperrors.HandleCalculationError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	if a.Config.Details {
		fmt.Fprintf(out, "Team size: %d (requested %d)\n", size, a.Config.Workers)
	}
	return apperrors.ExitSuccess
}

// runServer serves the HTTP API until SIGINT or SIGTERM.
func (a *Application) runServer(ctx context.Context, out io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.Config.ServerAddr, a.Factory,
		server.WithLogger(logging.NewZerologAdapter(a.logger())),
		server.WithMaxWorkers(a.Config.MaxWorkers),
		server.WithRequestTimeout(a.Config.Timeout),
	)
	fmt.Fprintf(out, "Serving on %s (GET /integrate, /health, /metrics)\n", a.Config.ServerAddr)
	if err := srv.Start(ctx); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runREPL starts the interactive shell.
func (a *Application) runREPL(ctx context.Context, out io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repl := cli.NewREPL(a.Factory, cli.REPLConfig{
		DefaultAlgo: a.Config.Algo,
		Steps:       a.Config.Steps,
		Workers:     a.Config.Workers,
		MaxWorkers:  a.Config.MaxWorkers,
		Schedule:    a.Config.ScheduleValue(),
		ChunkSize:   a.Config.ChunkSize,
		Timeout:     a.Config.Timeout,
	})
	repl.SetOutput(out)
	repl.Start(ctx)
	return apperrors.ExitSuccess
}
