package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/format"
	"github.com/agbru/picalc/internal/orchestration"
)

// maxLogEntries bounds the log history.
const maxLogEntries = 500

// LogsModel is the scrollable event log of the left panel.
type LogsModel struct {
	names    []string
	entries  []string
	lastPct  []int
	viewport viewport.Model
	width    int
	height   int
}

// NewLogsModel creates a log for the given integrator names.
func NewLogsModel(names []string) LogsModel {
	return LogsModel{
		names:    names,
		lastPct:  newLastPct(len(names)),
		viewport: viewport.New(0, 0),
	}
}

func newLastPct(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = -1
	}
	return p
}

// SetSize updates dimensions.
func (l *LogsModel) SetSize(w, h int) {
	l.width = w
	l.height = h
	l.viewport.Width = max(w-4, 0)
	l.viewport.Height = max(h-3, 0)
	l.refresh()
}

// Update forwards scroll keys to the viewport.
func (l *LogsModel) Update(msg tea.Msg) {
	l.viewport, _ = l.viewport.Update(msg)
}

// Reset clears the log.
func (l *LogsModel) Reset() {
	l.entries = nil
	l.lastPct = newLastPct(len(l.names))
	l.refresh()
}

// Len returns the number of entries.
func (l LogsModel) Len() int { return len(l.entries) }

func (l *LogsModel) add(line string) {
	ts := logTimeStyle.Render(time.Now().Format("15:04:05"))
	l.entries = append(l.entries, ts+" "+line)
	if len(l.entries) > maxLogEntries {
		l.entries = l.entries[len(l.entries)-maxLogEntries:]
	}
	atBottom := l.viewport.AtBottom()
	l.refresh()
	if atBottom {
		l.viewport.GotoBottom()
	}
}

func (l *LogsModel) refresh() {
	l.viewport.SetContent(strings.Join(l.entries, "\n"))
}

// AddExecutionConfig logs the job settings.
func (l *LogsModel) AddExecutionConfig(cfg config.AppConfig) {
	l.add(fmt.Sprintf("Integrating 4/(1+x²) on [0,1] with %s steps", format.FormatSteps(cfg.Steps)))
	workers := "hardware"
	if cfg.Workers > 0 {
		workers = fmt.Sprintf("%d", cfg.Workers)
	}
	l.add(fmt.Sprintf("Workers: %s, schedule %s, %d run(s) per strategy", workers, cfg.Schedule, max(cfg.Repeat, 1)))
	l.add(fmt.Sprintf("Strategies: %s", strings.Join(l.names, ", ")))
}

// AddProgressEntry logs each integrator's progress in 10% steps.
func (l *LogsModel) AddProgressEntry(msg ProgressMsg) {
	i := msg.CalculatorIndex
	if i < 0 || i >= len(l.names) {
		return
	}
	pct := int(msg.Value*10) * 10
	if pct <= l.lastPct[i] {
		return
	}
	l.lastPct[i] = pct
	l.add(fmt.Sprintf("%s %s",
		logAlgoStyle.Render(l.names[i]),
		logProgressStyle.Render(fmt.Sprintf("%3d%%", pct))))
}

// AddResults logs one line per strategy.
func (l *LogsModel) AddResults(results []orchestration.RunResult) {
	for _, r := range results {
		if r.Err != nil {
			l.add(fmt.Sprintf("%s %s", logAlgoStyle.Render(r.Name), logErrorStyle.Render("failed: "+r.Err.Error())))
			continue
		}
		l.add(fmt.Sprintf("%s %s in %s (%d/%d workers)",
			logAlgoStyle.Render(r.Name),
			logSuccessStyle.Render(fmt.Sprintf("%.15f", r.Result.Value)),
			format.FormatExecutionDuration(r.Duration),
			r.Result.Workers, r.Result.RequestedWorkers))
	}
}

// AddFinalResult logs the reference value and its error.
func (l *LogsModel) AddFinalResult(msg FinalResultMsg) {
	v := msg.Result.Result.Value
	l.add(logSuccessStyle.Render(fmt.Sprintf("pi ≈ %.15f (%s)", v, msg.Result.Name)))
	l.add(fmt.Sprintf("Absolute error %.3e, relative %s",
		math.Abs(v-math.Pi), format.FormatRelativeError(v, math.Pi)))
}

// AddError logs a failed job.
func (l *LogsModel) AddError(msg ErrorMsg) {
	l.add(logErrorStyle.Render(fmt.Sprintf("Error after %s: %v",
		format.FormatExecutionDuration(msg.Duration), msg.Err)))
}

// renderToHeight renders the panel at height h.
func (l LogsModel) renderToHeight(h int) string {
	l.viewport.Height = max(h-3, 0)
	body := titleStyle.Render(" Logs") + "\n" + l.viewport.View()
	return panelStyle.
		Width(max(l.width-2, 0)).
		Height(max(h-2, 0)).
		Render(body)
}

// View renders the panel at its configured height.
func (l LogsModel) View() string {
	return l.renderToHeight(l.height)
}
