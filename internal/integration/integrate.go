package integration

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/picalc/internal/parallel"
)

const tracerName = "github.com/agbru/picalc/internal/integration"

// errAborted stops reduction chunks after another chunk faulted. It never
// escapes Integrate: the recorded fault is returned instead.
var errAborted = errors.New("integration aborted")

// Result is the outcome of one integration run.
type Result struct {
	// Value is the integral estimate.
	Value float64
	// Elapsed is the wall-clock time of the parallel region and combine step.
	Elapsed time.Duration
	// Strategy is the combination strategy used.
	Strategy Strategy
	// Steps is the number of sample points.
	Steps int64
	// RequestedWorkers is the pool size asked for.
	RequestedWorkers int
	// Workers is the pool size granted and used for partitioning.
	Workers int
}

// Integrate estimates the integral of spec.Integrand over [0, 1].
//
// Configuration errors are returned before any worker starts. A panic in the
// integrand aborts the run: remaining workers stop at their next block
// boundary, every worker is joined, and an *IntegrandError is returned with
// no value. The compute phase itself is not interruptible; ctx is only
// checked before the pool is created.
func Integrate(ctx context.Context, spec Spec, requestedWorkers int, strategy Strategy, opts ...Option) (Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := spec.Validate(); err != nil {
		return Result{}, err
	}
	if requestedWorkers <= 0 {
		return Result{}, &InvalidConfigurationError{Field: "requested_worker_count", Value: int64(requestedWorkers)}
	}
	if _, ok := strategyKeys[strategy]; !ok {
		return Result{}, &InvalidConfigurationError{Field: "strategy", Value: int64(strategy)}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	_, span := otel.Tracer(tracerName).Start(ctx, "integration.Integrate",
		trace.WithAttributes(
			attribute.String("integration.strategy", strategy.String()),
			attribute.Int64("integration.steps", spec.NumSteps),
			attribute.Int("integration.requested_workers", requestedWorkers),
		))
	defer span.End()

	requested := requestedWorkers
	if strategy == Serial {
		requested = 1
	}
	pool := NewWorkerPool(requested, o.limit)
	workers := pool.Size()
	span.SetAttributes(attribute.Int("integration.workers", workers))

	r := newRun(spec, o)
	log := o.logger.With().Str("strategy", strategy.String()).Int64("steps", spec.NumSteps).
		Int("requested", pool.Requested()).Int("workers", workers).Logger()
	log.Debug().Msg("integration started")

	start := time.Now()
	var (
		sum float64
		err error
	)
	switch strategy {
	case Serial:
		sum, err = r.strided(Stride{Worker: 0, Workers: 1})
	case PostReduction:
		sum, err = postReduce(r, pool)
	case Atomic:
		sum, err = atomicReduce(r, pool)
	case RuntimeReduction:
		sum, err = runtimeReduce(r, workers, o.schedule, o.chunk)
	}
	value := sum * r.step
	elapsed := time.Since(start)

	if err != nil {
		if first := r.errs.Err(); first != nil {
			err = first
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug().Err(err).Dur("elapsed", elapsed).Msg("integration failed")
		return Result{}, err
	}

	log.Debug().Float64("value", value).Dur("elapsed", elapsed).Msg("integration finished")
	span.SetAttributes(attribute.Float64("integration.value", value))
	return Result{
		Value:            value,
		Elapsed:          elapsed,
		Strategy:         strategy,
		Steps:            spec.NumSteps,
		RequestedWorkers: requestedWorkers,
		Workers:          workers,
	}, nil
}

// postReduce gives each worker its own padded slot, then sums the slots in
// worker order once every worker has returned.
func postReduce(r *run, pool *WorkerPool) (float64, error) {
	workers := pool.Size()
	slots := parallel.NewPaddedSlots(workers)
	err := pool.Run(func(w int) error {
		partial, err := r.strided(Stride{Worker: w, Workers: workers})
		if err != nil {
			return err
		}
		slots[w].Value = partial
		return nil
	})
	if err != nil {
		return 0, err
	}
	return parallel.SumOrdered(slots), nil
}

// atomicReduce commits each worker's local partial with one atomic add.
func atomicReduce(r *run, pool *WorkerPool) (float64, error) {
	workers := pool.Size()
	var shared parallel.AtomicFloat64
	err := pool.Run(func(w int) error {
		partial, err := r.strided(Stride{Worker: w, Workers: workers})
		if err != nil {
			return err
		}
		shared.Add(partial)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return shared.Load(), nil
}

func runtimeReduce(r *run, workers int, schedule parallel.Schedule, chunk int64) (float64, error) {
	return parallel.Reduce(r.n, parallel.ReduceOptions{Workers: workers, Schedule: schedule, Chunk: chunk}, 0.0,
		r.contiguous,
		func(a, b float64) float64 { return a + b })
}
