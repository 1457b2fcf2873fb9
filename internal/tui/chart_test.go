package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/orchestration"
)

var chartStrategies = []string{"Serial", "Post-Reduction", "Atomic Accumulation"}

func newTestChart(w, h int) ChartModel {
	c := NewChartModel(chartStrategies)
	c.SetSize(w, h)
	return c
}

func TestChartModel_ProgressBar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		width    int
		progress float64
		want     []string
		empty    bool
	}{
		{name: "zero", width: 50, progress: 0, want: []string{"░", "0.0%"}},
		{name: "half", width: 50, progress: 0.5, want: []string{"█", "░", "50.0%"}},
		{name: "full", width: 50, progress: 1, want: []string{"█", "100.0%"}},
		{name: "clamped above", width: 50, progress: 1.7, want: []string{"100.0%"}},
		{name: "too narrow", width: 10, progress: 0.5, empty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestChart(tt.width, 10)
			c.AddDataPoint(tt.progress, time.Second)
			bar := c.renderProgressBar()
			if tt.empty {
				if bar != "" {
					t.Errorf("expected no bar, got %q", bar)
				}
				return
			}
			for _, w := range tt.want {
				if !strings.Contains(bar, w) {
					t.Errorf("bar %q missing %q", bar, w)
				}
			}
		})
	}
}

func TestChartModel_StrategyTracks(t *testing.T) {
	t.Parallel()
	c := newTestChart(70, 20)

	c.AddStrategyProgress(0, 1)
	c.AddStrategyProgress(1, 0.25)
	c.AddStrategyProgress(1, 0.5)
	c.AddStrategyProgress(7, 0.9)  // unknown index
	c.AddStrategyProgress(-1, 0.9) // unknown index

	if got := c.tracks[1].progress.Values(); len(got) != 2 || got[1] != 0.5 {
		t.Errorf("post-reduction track = %v, want [0.25 0.5]", got)
	}
	if c.tracks[2].progress.Len() != 0 {
		t.Error("atomic track should be empty")
	}

	c.SetResults([]orchestration.RunResult{
		{Name: "Serial", Result: integration.Result{Workers: 1}},
		{Name: "Post-Reduction", Result: integration.Result{Workers: 4}},
		{Name: "Atomic Accumulation", Err: errors.New("integrand fault")},
		{Name: "extra"},
	})

	view := c.View()
	for _, want := range []string{"Serial", "Post-Reduction", "Atomic Accumulation", "W=1", "W=4", "✗", " 50.0%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestChartModel_TracksHiddenWhenShort(t *testing.T) {
	t.Parallel()
	c := newTestChart(70, 8)
	c.SetResults([]orchestration.RunResult{{Result: integration.Result{Workers: 3}}})
	if strings.Contains(c.View(), "W=3") {
		t.Error("tracks should not be drawn without room for them")
	}
}

func TestChartModel_SetSize(t *testing.T) {
	t.Parallel()
	c := newTestChart(50, 15)

	if got, want := c.cpuHistory.Capacity(), 50-sparklineWidth; got != want {
		t.Errorf("cpu capacity = %d, want %d", got, want)
	}
	if got, want := c.memHistory.Capacity(), 50-sparklineWidth; got != want {
		t.Errorf("mem capacity = %d, want %d", got, want)
	}
	if got, want := c.progress.Capacity(), (50-4)*2; got != want {
		t.Errorf("progress capacity = %d, want %d", got, want)
	}
	if got, want := c.tracks[0].progress.Capacity(), c.trackWidth(); got != want {
		t.Errorf("track capacity = %d, want %d", got, want)
	}
}

func TestChartModel_HostLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		height int
		want   bool
	}{
		{"visible", 15, true},
		{"hidden when short", 8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestChart(50, tt.height)
			c.UpdateSysStats(25, 60)
			c.UpdateSysStats(30, 62)

			if c.cpuHistory.Latest() != 30 || c.memHistory.Latest() != 62 {
				t.Errorf("latest = %v/%v, want 30/62", c.cpuHistory.Latest(), c.memHistory.Latest())
			}
			view := c.View()
			if got := strings.Contains(view, "CPU") && strings.Contains(view, "MEM"); got != tt.want {
				t.Errorf("host load shown = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChartModel_ViewShowsETA(t *testing.T) {
	t.Parallel()
	c := newTestChart(50, 10)
	c.AddDataPoint(0.3, 20*time.Second)
	c.AddDataPoint(0.6, 10*time.Second)

	view := c.View()
	for _, want := range []string{"Progress Chart", "ETA:", "60.0%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestChartModel_SetDone(t *testing.T) {
	t.Parallel()
	c := newTestChart(50, 10)
	c.AddDataPoint(0.4, 10*time.Second)

	c.SetDone(1500 * time.Millisecond)

	view := c.View()
	if !strings.Contains(view, "Done in 1.5s") {
		t.Errorf("expected final duration in view:\n%s", view)
	}
	if !strings.Contains(view, "100.0%") {
		t.Error("expected a full bar once done")
	}
}

func TestChartModel_Reset(t *testing.T) {
	t.Parallel()
	c := newTestChart(70, 20)
	c.AddDataPoint(0.5, 10*time.Second)
	c.AddStrategyProgress(0, 0.5)
	c.SetResults([]orchestration.RunResult{{Result: integration.Result{Workers: 2}}})
	c.UpdateSysStats(25, 60)
	c.SetDone(time.Second)

	c.Reset()

	if c.averageProgress != 0 || c.done {
		t.Error("progress state not cleared")
	}
	if c.progress.Len()+c.cpuHistory.Len()+c.memHistory.Len() != 0 {
		t.Error("histories not cleared")
	}
	if c.tracks[0].progress.Len() != 0 || c.tracks[0].workers != 0 {
		t.Errorf("track not cleared: %+v", c.tracks[0])
	}
}
