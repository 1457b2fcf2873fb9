package integration

import (
	"sync/atomic"

	"github.com/agbru/picalc/internal/parallel"
	"github.com/agbru/picalc/internal/progress"
)

// blockSize is the number of evaluations between abort checks and progress
// reports.
const blockSize = 1 << 14

// run holds the read-only inputs of one integration and the fault state
// shared by its workers.
type run struct {
	f       Integrand
	n       int64
	step    float64
	tracker *progress.Tracker
	visitor Visitor

	aborted atomic.Bool
	errs    parallel.ErrorCollector
}

func newRun(spec Spec, o options) *run {
	r := &run{
		f:       spec.integrand(),
		n:       spec.NumSteps,
		step:    spec.StepWidth(),
		visitor: o.visitor,
	}
	if o.progress != nil {
		r.tracker = progress.NewTracker(spec.NumSteps, o.progress)
	}
	return r
}

func (r *run) fail(err error) {
	r.errs.SetError(err)
	r.aborted.Store(true)
}

// accumulate adds f at the sample points of count indices first,
// first+stride, ... into sum, in increasing index order. A panicking
// integrand is recovered into an IntegrandError.
func (r *run) accumulate(worker int, sum float64, first, count, stride int64) (_ float64, err error) {
	i := first
	defer func() {
		if p := recover(); p != nil {
			err = newIntegrandError(worker, i, midpoint(i, r.step), p)
		}
	}()
	for k := range count {
		i = first + k*stride
		if r.visitor != nil {
			r.visitor(worker, i)
		}
		sum += r.f(midpoint(i, r.step))
	}
	return sum, nil
}

// strided returns the unscaled sum of one worker's cyclic share, processed
// in blocks of blockSize evaluations so that a fault elsewhere stops it early.
func (r *run) strided(s Stride) (float64, error) {
	count := s.Count(r.n)
	var sum float64
	for k := int64(0); k < count; {
		if r.aborted.Load() {
			return 0, nil
		}
		block := min(blockSize, count-k)
		var err error
		if sum, err = r.accumulate(s.Worker, sum, s.Index(k), block, int64(s.Workers)); err != nil {
			r.fail(err)
			return 0, err
		}
		r.tracker.Add(block)
		k += block
	}
	return sum, nil
}

// contiguous returns the unscaled sum of [lo, hi) for a reduction chunk.
func (r *run) contiguous(worker int, lo, hi int64) (float64, error) {
	var sum float64
	for i := lo; i < hi; {
		if r.aborted.Load() {
			return 0, errAborted
		}
		block := min(blockSize, hi-i)
		var err error
		if sum, err = r.accumulate(worker, sum, i, block, 1); err != nil {
			r.fail(err)
			return 0, err
		}
		r.tracker.Add(block)
		i += block
	}
	return sum, nil
}
