package calibration

import (
	"slices"

	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/integration"
)

// GenerateWorkerCandidates returns the worker counts a full calibration
// benchmarks: powers of two up to the hardware concurrency, the hardware
// concurrency itself, and one oversubscribed count to confirm the cap.
func GenerateWorkerCandidates() []int {
	return workerCandidates(integration.HardwareConcurrency(), true)
}

// GenerateQuickWorkerCandidates returns a reduced set: one, half the cores
// and all of them.
func GenerateQuickWorkerCandidates() []int {
	hw := integration.HardwareConcurrency()
	return dedupSorted([]int{1, max(hw/2, 1), hw})
}

func workerCandidates(hw int, oversubscribe bool) []int {
	var out []int
	for w := 1; w < hw; w *= 2 {
		out = append(out, w)
	}
	out = append(out, hw)
	if oversubscribe && hw > 1 {
		out = append(out, 2*hw)
	}
	return dedupSorted(out)
}

func dedupSorted(in []int) []int {
	slices.Sort(in)
	return slices.Compact(in)
}

// EstimateOptimalWorkers delegates to config.EstimateOptimalWorkers.
func EstimateOptimalWorkers() int { return config.EstimateOptimalWorkers(0) }
