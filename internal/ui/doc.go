// Package ui holds the color themes shared by the CLI presenter and the TUI
// dashboard. ANSI themes drive plain terminal output; TUITheme carries the
// lipgloss colors used by the dashboard.
package ui
