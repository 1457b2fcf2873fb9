package integration

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// HardwareConcurrency returns the number of goroutines that can execute
// simultaneously: the smaller of the CPU count and GOMAXPROCS.
func HardwareConcurrency() int {
	return max(min(runtime.NumCPU(), runtime.GOMAXPROCS(0)), 1)
}

// WorkerPool is a fork-join team created once per run. Its size is decided
// when the pool is created and may be smaller than requested; callers must
// partition work by Size, never by the request.
type WorkerPool struct {
	requested int
	actual    int
}

// NewWorkerPool grants min(requested, limit) workers. A limit <= 0, or one
// above the hardware concurrency, is replaced by HardwareConcurrency.
// The granted size is at least 1.
func NewWorkerPool(requested, limit int) *WorkerPool {
	hw := HardwareConcurrency()
	if limit <= 0 || limit > hw {
		limit = hw
	}
	return &WorkerPool{requested: requested, actual: max(min(requested, limit), 1)}
}

// Requested returns the size asked for.
func (p *WorkerPool) Requested() int { return p.requested }

// Size returns the number of workers actually granted.
func (p *WorkerPool) Size() int { return p.actual }

// Run starts Size workers, each calling fn with its index, and waits for all
// of them. It returns the first non-nil error.
func (p *WorkerPool) Run(fn func(worker int) error) error {
	var g errgroup.Group
	for w := range p.actual {
		g.Go(func() error { return fn(w) })
	}
	return g.Wait()
}
