package parallel

import (
	"math"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// AtomicFloat64 is a float64 accumulator whose Add is a single indivisible
// read-modify-write. Concurrent adds are serialized and none are lost, but the
// order in which they commit is unspecified, so the final sum is not
// bit-reproducible across runs.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// Load returns the current value.
func (a *AtomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

// Store overwrites the current value.
func (a *AtomicFloat64) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}

// Add adds delta and returns the new value.
func (a *AtomicFloat64) Add(delta float64) float64 {
	for {
		old := a.bits.Load()
		next := math.Float64frombits(old) + delta
		if a.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// Padded is a float64 accumulator slot that occupies its own cache line.
// A slice of Padded lets each worker write its partial sum without false
// sharing with its neighbours.
type Padded struct {
	_     cpu.CacheLinePad
	Value float64
	_     cpu.CacheLinePad
}

// NewPaddedSlots allocates n zeroed accumulator slots.
func NewPaddedSlots(n int) []Padded {
	return make([]Padded, n)
}

// SumOrdered adds the slot values in index order. The fixed order makes the
// result identical for identical slot contents.
func SumOrdered(slots []Padded) float64 {
	var sum float64
	for i := range slots {
		sum += slots[i].Value
	}
	return sum
}
