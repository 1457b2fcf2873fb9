package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/picalc/internal/format"
)

// MetricsModel displays runtime memory and run indicators.
type MetricsModel struct {
	alloc        uint64
	heapInuse    uint64
	numGC        uint32
	pauseTotalNs uint64
	numGoroutine int
	speed        float64 // progress per second
	lastProgress float64
	lastUpdate   time.Time
	indicators   *Indicators
	width        int
	height       int
}

// NewMetricsModel creates a new metrics panel.
func NewMetricsModel() MetricsModel {
	return MetricsModel{
		lastUpdate: time.Now(),
	}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// UpdateMemStats updates memory statistics.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.alloc = msg.Alloc
	m.heapInuse = msg.HeapInuse
	m.numGC = msg.NumGC
	m.pauseTotalNs = msg.PauseTotalNs
	m.numGoroutine = msg.NumGoroutine
}

// UpdateProgress updates the smoothed progress rate. Updates closer than
// 50ms apart are ignored.
func (m *MetricsModel) UpdateProgress(progress float64) {
	now := time.Now()
	dt := now.Sub(m.lastUpdate).Seconds()
	if dt > 0.05 {
		dp := progress - m.lastProgress
		if dp > 0 {
			instantSpeed := dp / dt
			if m.speed > 0 {
				m.speed = 0.7*m.speed + 0.3*instantSpeed
			} else {
				m.speed = instantSpeed
			}
		}
		m.lastProgress = progress
		m.lastUpdate = now
	}
}

// UpdateIndicators stores live or final indicators. Live estimates never
// replace final ones.
func (m *MetricsModel) UpdateIndicators(ind *Indicators) {
	if ind == nil || (m.indicators != nil && m.indicators.Final && !ind.Final) {
		return
	}
	m.indicators = ind
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	var rows strings.Builder

	rows.WriteString(titleStyle.Render(" Metrics"))
	rows.WriteString("\n")

	heapStr := metricValueStyle.Render(formatBytes(m.alloc) + " / " + formatBytes(m.heapInuse))
	gcStr := metricValueStyle.Render(fmt.Sprintf("%d (%.1fms)", m.numGC, float64(m.pauseTotalNs)/1e6))
	pipe := metricLabelStyle.Render(" | ")
	rows.WriteString(fmt.Sprintf("  %s %s%s%s %s",
		metricLabelStyle.Render("Memory Heap:"), heapStr,
		pipe,
		metricLabelStyle.Render("GC Runs:"), gcStr))

	colWidth := (m.width - 6) / 2

	speed := "-"
	if m.speed > 0 {
		speed = fmt.Sprintf("%.1f%%/s", m.speed*100)
	}
	leftCol := []string{formatMetricCol("Speed:", speed, colWidth)}
	rightCol := []string{formatMetricCol("Goroutines:", fmt.Sprintf("%d", m.numGoroutine), colWidth)}

	if ind := m.indicators; ind != nil {
		throughput := "n/a"
		if ind.StepsPerSecond > 0 {
			throughput = format.FormatThroughput(int64(ind.StepsPerSecond), 1)
		}
		leftCol = append(leftCol, formatMetricCol("Throughput:", throughput, colWidth))
		if ind.Final {
			rightCol = append(rightCol, formatMetricCol("Workers:", fmt.Sprintf("%d/%d", ind.Workers, ind.Requested), colWidth))
			leftCol = append(leftCol, formatMetricCol("Abs error:", formatError(ind.AbsError), colWidth))
			repro := "bit-identical"
			if !ind.Reproducible {
				repro = "varies"
			}
			rightCol = append(rightCol, formatMetricCol("Repeats:", repro, colWidth))
		} else {
			rightCol = append(rightCol, formatMetricCol("Workers:", "-", colWidth))
		}
	}

	for i := range leftCol {
		rows.WriteString("\n")
		rows.WriteString(leftCol[i])
		rows.WriteString(rightCol[i])
	}

	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(rows.String())
}

func formatError(e float64) string {
	if math.IsNaN(e) {
		return "-"
	}
	return fmt.Sprintf("%.3e", e)
}

func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-12s", label)),
		metricValueStyle.Render(value))
	visible := lipgloss.Width(cell)
	if visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}

func formatBytes(b uint64) string {
	return format.FormatBytes(b)
}
