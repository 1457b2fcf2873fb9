package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/picalc/internal/ui"
)

// Dashboard styles, derived from the active ui.TUITheme by applyTheme.
var (
	panelStyle lipgloss.Style
	titleStyle lipgloss.Style

	headerStyle  lipgloss.Style
	versionStyle lipgloss.Style
	elapsedStyle lipgloss.Style

	logTimeStyle     lipgloss.Style
	logAlgoStyle     lipgloss.Style
	logProgressStyle lipgloss.Style
	logSuccessStyle  lipgloss.Style
	logErrorStyle    lipgloss.Style

	metricLabelStyle lipgloss.Style
	metricValueStyle lipgloss.Style

	chartBarStyle      lipgloss.Style
	chartEmptyStyle    lipgloss.Style
	trackFailedStyle   lipgloss.Style
	cpuSparklineStyle  lipgloss.Style
	memSparklineStyle  lipgloss.Style
	footerKeyStyle     lipgloss.Style
	footerDescStyle    lipgloss.Style
	statusRunningStyle lipgloss.Style
	statusPausedStyle  lipgloss.Style
	statusDoneStyle    lipgloss.Style
	statusErrorStyle   lipgloss.Style
)

func init() {
	applyTheme(ui.GetCurrentTUITheme())
}

// applyTheme rebuilds every style from t. Run calls it again once the
// --no-color choice is known.
func applyTheme(t ui.TUITheme) {
	fg := func(c lipgloss.TerminalColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	bold := func(c lipgloss.TerminalColor) lipgloss.Style { return fg(c).Bold(true) }

	panelStyle = fg(t.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Background(t.Bg)
	titleStyle = bold(t.Accent)

	headerStyle = bold(t.Accent).Background(t.Bg).Padding(0, 1)
	versionStyle = fg(t.Dim)
	elapsedStyle = fg(t.Accent)

	logTimeStyle = fg(t.Dim)
	logAlgoStyle = fg(t.Info)
	logProgressStyle = fg(t.Accent)
	logSuccessStyle = fg(t.Success)
	logErrorStyle = fg(t.Error)

	metricLabelStyle = fg(t.Dim)
	metricValueStyle = bold(t.Accent)

	chartBarStyle = fg(t.Accent)
	chartEmptyStyle = fg(t.Dim)
	trackFailedStyle = bold(t.Error)
	cpuSparklineStyle = fg(t.Accent)
	memSparklineStyle = fg(t.Warning)

	footerKeyStyle = bold(t.Accent)
	footerDescStyle = fg(t.Dim)
	statusRunningStyle = bold(t.Success)
	statusPausedStyle = bold(t.Warning)
	statusDoneStyle = bold(t.Accent)
	statusErrorStyle = bold(t.Error)
}
