package memory

import (
	"runtime/debug"
	"testing"
)

var sink []byte

func TestNewGCController_Activation(t *testing.T) {
	tests := []struct {
		mode  string
		steps int64
		want  bool
	}{
		{"auto", GCAutoThreshold - 1, false},
		{"auto", GCAutoThreshold, true},
		{"aggressive", 1, true},
		{"disabled", GCAutoThreshold * 10, false},
		{"bogus", GCAutoThreshold * 10, false},
		{"", GCAutoThreshold, false},
	}
	for _, tt := range tests {
		if got := NewGCController(tt.mode, tt.steps).Active(); got != tt.want {
			t.Errorf("NewGCController(%q, %d).Active() = %v, want %v", tt.mode, tt.steps, got, tt.want)
		}
	}
}

// Not parallel: the test changes the process-wide GC percent.
func TestGCController_BeginEndRestores(t *testing.T) {
	before := debug.SetGCPercent(100)
	defer debug.SetGCPercent(before)

	gc := NewGCController("aggressive", 1)
	gc.Begin()
	if got := debug.SetGCPercent(-1); got != -1 {
		t.Errorf("GC percent during run = %d, want -1", got)
	}
	sink = make([]byte, 1<<20)
	gc.End()

	if got := debug.SetGCPercent(100); got != 100 {
		t.Errorf("GC percent after End = %d, want 100", got)
	}
	if gc.Footprint().Allocated == 0 {
		t.Error("Footprint().Allocated = 0, want the 1 MiB allocation counted")
	}
}

func TestGCController_InactiveIsNoop(t *testing.T) {
	before := debug.SetGCPercent(100)
	defer debug.SetGCPercent(before)

	gc := NewGCController("disabled", GCAutoThreshold)
	gc.Begin()
	if got := debug.SetGCPercent(100); got != 100 {
		t.Errorf("inactive controller changed GC percent to %d", got)
	}
	gc.End()
	if fp := gc.Footprint(); fp.Allocated != 0 || fp.GCCycles != 0 {
		t.Errorf("Footprint() = %+v, want zero", fp)
	}
}
