// Package memory suspends the garbage collector around timed integration
// runs so collection pauses do not land inside the measured window.
package memory

import (
	"math"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/agbru/picalc/internal/metrics"
)

// GCMode controls the garbage collector during timed runs.
type GCMode string

const (
	// GCModeAuto suspends collection only for runs of at least GCAutoThreshold steps.
	GCModeAuto GCMode = "auto"
	// GCModeAggressive always suspends collection.
	GCModeAggressive GCMode = "aggressive"
	// GCModeDisabled leaves the collector alone.
	GCModeDisabled GCMode = "disabled"
)

// GCAutoThreshold is the smallest step count for which auto mode activates.
const GCAutoThreshold int64 = 10_000_000

// memoryLimitFactor bounds heap growth while collection is off.
const memoryLimitFactor = 3

// GCController suspends collection between Begin and End and restores the
// previous settings afterwards.
type GCController struct {
	mode              GCMode
	active            bool
	originalGCPercent int
	logger            zerolog.Logger
	collector         *metrics.MemoryCollector
	start, end        metrics.MemorySnapshot
}

// NewGCController creates a controller for mode and a run of steps samples.
// Unknown modes behave like GCModeDisabled.
func NewGCController(mode string, steps int64) *GCController {
	gc := &GCController{
		mode:      GCMode(mode),
		logger:    zerolog.Nop(),
		collector: metrics.NewMemoryCollector(),
	}
	switch gc.mode {
	case GCModeAggressive:
		gc.active = true
	case GCModeAuto:
		gc.active = steps >= GCAutoThreshold
	}
	return gc
}

// SetLogger configures the logger for GC control events.
func (gc *GCController) SetLogger(l zerolog.Logger) {
	gc.logger = l
}

// Active reports whether Begin will suspend collection.
func (gc *GCController) Active() bool { return gc.active }

// Begin suspends collection and sets a soft memory limit as an OOM guard.
func (gc *GCController) Begin() {
	if !gc.active {
		return
	}
	gc.start = gc.collector.Snapshot()
	gc.originalGCPercent = debug.SetGCPercent(-1)
	if limit := int64(gc.start.Sys) * memoryLimitFactor; limit > 0 {
		debug.SetMemoryLimit(limit)
	}
	gc.logger.Debug().
		Str("mode", string(gc.mode)).
		Uint64("heap_alloc_bytes", gc.start.HeapAlloc).
		Msg("gc suspended")
}

// End restores the collector settings and runs one collection.
func (gc *GCController) End() {
	if !gc.active {
		return
	}
	gc.end = gc.collector.Snapshot()
	debug.SetGCPercent(gc.originalGCPercent)
	debug.SetMemoryLimit(math.MaxInt64)
	runtime.GC()
	fp := gc.Footprint()
	gc.logger.Debug().
		Str("mode", string(gc.mode)).
		Uint64("heap_alloc_bytes", gc.end.HeapAlloc).
		Uint64("allocated_bytes", fp.Allocated).
		Uint32("gc_cycles", fp.GCCycles).
		Msg("gc restored")
}

// Footprint returns what was allocated and collected between Begin and End.
// It is zero for an inactive controller.
func (gc *GCController) Footprint() metrics.RunFootprint {
	if !gc.active {
		return metrics.RunFootprint{}
	}
	return gc.end.Since(gc.start)
}
