package ui

import "github.com/charmbracelet/lipgloss"

// blight's palette: soot and embers.
var (
	Ember = lipgloss.Color("#E4572E")
	Ash   = lipgloss.Color("#8B8680")
	Moss  = lipgloss.Color("#50C878")
	Amber = lipgloss.Color("#FFBF00")
	Slate = lipgloss.Color("#4F6D7A")
	Dim   = lipgloss.Color("#666666")
	Chalk = lipgloss.Color("#FFFFFF")

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Ember)

	Success = lipgloss.NewStyle().
		Foreground(Moss)

	Error = lipgloss.NewStyle().
		Foreground(Ember).
		Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Amber)

	Info = lipgloss.NewStyle().
		Foreground(Slate)

	Muted = lipgloss.NewStyle().
		Foreground(Dim)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Chalk)
)

const (
	IconWarn  = "⚠ "
	IconError = "✗ "
	IconOk    = "✓ "
	IconArrow = "→"
	IconDot   = "·"
)
