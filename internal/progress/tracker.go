package progress

import (
	"math/bits"
	"sync/atomic"
)

// Steps is the number of evenly spaced progress notifications per run.
const Steps = 100

// Tracker converts completed index counts from many workers into fractional
// progress. The callback fires each time the total crosses another 1/Steps of
// the work, and exactly once with 1.0 when everything is done.
//
// Add is safe for concurrent use. The callback may be invoked from any
// worker goroutine but never concurrently with itself for the same step.
type Tracker struct {
	total    int64
	done     atomic.Int64
	reported atomic.Int64
	callback ProgressCallback
}

// NewTracker returns a tracker for total units of work.
// A nil callback yields a tracker that reports nothing.
func NewTracker(total int64, callback ProgressCallback) *Tracker {
	return &Tracker{total: total, callback: callback}
}

// Add records n completed units.
func (t *Tracker) Add(n int64) {
	if t == nil || n <= 0 {
		return
	}
	done := t.done.Add(n)
	if t.callback == nil || t.total <= 0 {
		return
	}
	step := stepOf(done, t.total)
	for {
		prev := t.reported.Load()
		if step <= prev {
			return
		}
		if t.reported.CompareAndSwap(prev, step) {
			t.callback(float64(step) / Steps)
			return
		}
	}
}

// stepOf returns floor(done*Steps/total), capped at Steps. The product is
// formed in 128 bits so that totals near math.MaxInt64 do not overflow.
func stepOf(done, total int64) int64 {
	if done >= total {
		return Steps
	}
	hi, lo := bits.Mul64(uint64(done), Steps)
	q, _ := bits.Div64(hi, lo, uint64(total))
	return int64(q)
}
