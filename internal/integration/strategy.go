package integration

import (
	"fmt"
	"strings"
)

// Strategy selects how per-worker sums are combined.
type Strategy int

const (
	// Serial evaluates every point on one worker in index order.
	Serial Strategy = iota
	// PostReduction stores per-worker partials and adds them in worker order
	// after the join.
	PostReduction
	// Atomic commits each worker partial into one shared accumulator.
	Atomic
	// RuntimeReduction delegates chunking and combining to parallel.Reduce.
	RuntimeReduction
)

const (
	deterministicTolerance = 1e-9
	atomicTolerance        = 1e-6
)

var strategyKeys = map[Strategy]string{
	Serial:           "serial",
	PostReduction:    "post",
	Atomic:           "atomic",
	RuntimeReduction: "reduce",
}

var strategyNames = map[Strategy]string{
	Serial:           "Serial",
	PostReduction:    "Post-Reduction",
	Atomic:           "Atomic Accumulation",
	RuntimeReduction: "Runtime Reduction",
}

// Strategies returns every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{Serial, PostReduction, Atomic, RuntimeReduction}
}

// String returns the short key used on the command line ("serial", "post", ...).
func (s Strategy) String() string {
	if k, ok := strategyKeys[s]; ok {
		return k
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// DisplayName returns the human-readable strategy name.
func (s Strategy) DisplayName() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return s.String()
}

// Deterministic reports whether repeated runs with the same worker count
// produce bit-identical values.
func (s Strategy) Deterministic() bool {
	return s != Atomic
}

// Tolerance is the relative error allowed against the serial reference.
func (s Strategy) Tolerance() float64 {
	if s == Atomic {
		return atomicTolerance
	}
	return deterministicTolerance
}

// ParseStrategy resolves a short key or display name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for s, k := range strategyKeys {
		if n == k || n == strings.ToLower(strategyNames[s]) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}
