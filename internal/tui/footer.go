package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// FooterModel renders the key help and the run status.
type FooterModel struct {
	help   help.Model
	keys   KeyMap
	paused bool
	done   bool
	err    bool
	width  int
}

// NewFooterModel creates a footer for the default key map.
func NewFooterModel() FooterModel {
	h := help.New()
	h.Styles.ShortKey = footerKeyStyle
	h.Styles.ShortDesc = footerDescStyle
	h.Styles.ShortSeparator = footerDescStyle
	return FooterModel{help: h, keys: DefaultKeyMap()}
}

// SetWidth updates the available width.
func (f *FooterModel) SetWidth(w int) {
	f.width = w
	f.help.Width = max(w-14, 0)
}

// SetPaused toggles the paused indicator.
func (f *FooterModel) SetPaused(p bool) { f.paused = p }

// SetDone marks the job finished.
func (f *FooterModel) SetDone(d bool) { f.done = d }

// SetError marks the job failed.
func (f *FooterModel) SetError(e bool) { f.err = e }

func (f FooterModel) status() string {
	switch {
	case f.err:
		return statusErrorStyle.Render("ERROR")
	case f.done:
		return statusDoneStyle.Render("DONE")
	case f.paused:
		return statusPausedStyle.Render("PAUSED")
	default:
		return statusRunningStyle.Render("RUNNING")
	}
}

// View renders the footer.
func (f FooterModel) View() string {
	left := " " + f.help.View(f.keys)
	right := f.status() + " "
	gap := f.width - lipgloss.Width(left) - lipgloss.Width(right)
	return left + spaces(gap) + right
}
