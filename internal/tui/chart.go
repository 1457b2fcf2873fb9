package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/picalc/internal/format"
	"github.com/agbru/picalc/internal/orchestration"
)

// sparklineWidth is the chart width not available to host load samples:
// borders, padding and the "CPU 100.0% " label.
const sparklineWidth = 17

// minSparklineHeight is the chart height below which host load is hidden.
const minSparklineHeight = 10

// strategyTrack is the progress history of one strategy and, once it has
// finished, the number of workers it was granted.
type strategyTrack struct {
	name     string
	progress *History
	workers  int
	failed   bool
}

// ChartModel shows the aggregate progress, one track per strategy and host load.
type ChartModel struct {
	progress        *History
	tracks          []strategyTrack
	nameWidth       int
	cpuHistory      *History
	memHistory      *History
	averageProgress float64
	eta             time.Duration
	elapsed         time.Duration
	done            bool
	width           int
	height          int
}

// NewChartModel creates an empty chart with a track for each strategy name.
func NewChartModel(names []string) ChartModel {
	c := ChartModel{
		progress:   NewHistory(64),
		cpuHistory: NewHistory(32),
		memHistory: NewHistory(32),
	}
	for _, name := range names {
		c.tracks = append(c.tracks, strategyTrack{name: name, progress: NewHistory(16)})
		c.nameWidth = max(c.nameWidth, len(name))
	}
	return c
}

// trackWidth is the room left for a track's sparkline after its label,
// percentage and worker count.
func (c ChartModel) trackWidth() int {
	return c.width - c.nameWidth - 20
}

// SetSize updates dimensions and resizes the sample histories to fit.
func (c *ChartModel) SetSize(w, h int) {
	c.width = w
	c.height = h
	if n := w - sparklineWidth; n > 0 {
		c.cpuHistory.SetCapacity(n)
		c.memHistory.SetCapacity(n)
	}
	if n := (w - 4) * 2; n > 0 {
		c.progress.SetCapacity(n)
	}
	if n := c.trackWidth(); n > 0 {
		for _, t := range c.tracks {
			t.progress.SetCapacity(n)
		}
	}
}

// AddDataPoint records the aggregate progress over every strategy.
func (c *ChartModel) AddDataPoint(avg float64, eta time.Duration) {
	c.averageProgress = avg
	c.eta = eta
	c.progress.Record(avg)
}

// AddStrategyProgress records the progress of the strategy at index.
// Unknown indices are ignored.
func (c *ChartModel) AddStrategyProgress(index int, value float64) {
	if index < 0 || index >= len(c.tracks) {
		return
	}
	c.tracks[index].progress.Record(value)
}

// SetResults marks each track with the outcome of its strategy. Results are
// index-aligned with the names given to NewChartModel.
func (c *ChartModel) SetResults(results []orchestration.RunResult) {
	for i, r := range results {
		if i >= len(c.tracks) {
			return
		}
		c.tracks[i].workers = r.Result.Workers
		c.tracks[i].failed = r.Err != nil
	}
}

// UpdateSysStats records a host CPU and memory sample in percent.
func (c *ChartModel) UpdateSysStats(cpuPercent, memPercent float64) {
	c.cpuHistory.Record(cpuPercent)
	c.memHistory.Record(memPercent)
}

// SetDone freezes the chart with the final elapsed time.
func (c *ChartModel) SetDone(elapsed time.Duration) {
	c.done = true
	c.elapsed = elapsed
	c.averageProgress = 1
	c.eta = 0
}

// Reset clears all samples and strategy outcomes.
func (c *ChartModel) Reset() {
	c.progress.Clear()
	c.cpuHistory.Clear()
	c.memHistory.Clear()
	for i := range c.tracks {
		c.tracks[i].progress.Clear()
		c.tracks[i].workers = 0
		c.tracks[i].failed = false
	}
	c.averageProgress = 0
	c.eta = 0
	c.elapsed = 0
	c.done = false
}

// renderProgressBar returns the bar line, or "" when the chart is too
// narrow to hold one.
func (c ChartModel) renderProgressBar() string {
	barWidth := c.width - 14
	if barWidth < 5 {
		return ""
	}
	p := min(max(c.averageProgress, 0), 1)
	filled := int(p * float64(barWidth))
	return fmt.Sprintf("  %s%s %5.1f%%",
		chartBarStyle.Render(strings.Repeat("█", filled)),
		chartEmptyStyle.Render(strings.Repeat("░", barWidth-filled)),
		p*100)
}

// renderTrack returns one strategy line: name, progress sparkline, latest
// percentage and granted workers once known.
func (c ChartModel) renderTrack(t strategyTrack) string {
	workers := "     "
	switch {
	case t.failed:
		workers = trackFailedStyle.Render("  ✗  ")
	case t.workers > 0:
		workers = fmt.Sprintf(" W=%-2d", t.workers)
	}
	return fmt.Sprintf("  %-*s %s %5.1f%%%s",
		c.nameWidth, t.name,
		chartBarStyle.Render(Sparkline(t.progress.Values(), 0, 1)),
		t.progress.Latest()*100, workers)
}

// View renders the chart panel.
func (c ChartModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" Progress Chart"))
	b.WriteString("\n")

	if bar := c.renderProgressBar(); bar != "" {
		b.WriteString(bar)
		b.WriteString("\n")
	}

	status := "ETA: " + format.FormatETA(c.eta)
	if c.done {
		status = "Done in " + format.FormatExecutionDuration(c.elapsed)
	}
	b.WriteString("  " + metricLabelStyle.Render(status))

	showSparklines := c.height >= minSparklineHeight
	rows := c.height - 6
	if showSparklines {
		rows -= 2
	}
	if c.trackWidth() > 0 && rows > len(c.tracks) {
		for _, t := range c.tracks {
			b.WriteString("\n")
			b.WriteString(c.renderTrack(t))
		}
		rows -= len(c.tracks)
	}
	if rows > 0 && c.width > 4 {
		for _, line := range AreaChart(c.progress.Values(), c.width-4, rows) {
			b.WriteString("\n  ")
			b.WriteString(chartBarStyle.Render(line))
		}
	}

	if showSparklines {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s %s",
			metricLabelStyle.Render(fmt.Sprintf("CPU %5.1f%%", c.cpuHistory.Latest())),
			cpuSparklineStyle.Render(Sparkline(c.cpuHistory.Values(), 0, 100))))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s %s",
			metricLabelStyle.Render(fmt.Sprintf("MEM %5.1f%%", c.memHistory.Latest())),
			memSparklineStyle.Render(Sparkline(c.memHistory.Values(), 0, 100))))
	}

	return panelStyle.
		Width(max(c.width-2, 0)).
		Height(max(c.height-2, 0)).
		Render(b.String())
}
