package integration

import "context"

// Team starts a pool of up to requested workers (capped by limit as in
// NewWorkerPool) and calls fn once per granted worker with its id and the
// granted team size. It returns the team size and the first error from fn.
func Team(ctx context.Context, requested, limit int, fn func(id, size int) error) (int, error) {
	if requested <= 0 {
		return 0, &InvalidConfigurationError{Field: "requested_worker_count", Value: int64(requested)}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pool := NewWorkerPool(requested, limit)
	size := pool.Size()
	return size, pool.Run(func(w int) error { return fn(w, size) })
}
