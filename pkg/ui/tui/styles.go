package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	accentCyan   = lipgloss.Color("#5FD7FF")
	accentPink   = lipgloss.Color("#FF87D7")
	accentGreen  = lipgloss.Color("#87D787")
	accentYellow = lipgloss.Color("#FFD75F")
	accentOrange = lipgloss.Color("#FF8700")
	accentRed    = lipgloss.Color("#FF5F5F")
	darkBg       = lipgloss.Color("#1C1C2E")
	dimWhite     = lipgloss.Color("#B0B0B0")

	logoStyle = lipgloss.NewStyle().
			Foreground(accentPink).
			Bold(true).
			Padding(1, 0)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentPink).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Background(accentPink).
			Foreground(darkBg).
			Bold(true).
			Padding(0, 1)

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(accentCyan).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(accentYellow)

	successStyle = lipgloss.NewStyle().
			Foreground(accentGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(accentRed).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(accentOrange).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimWhite)

	logTimestampStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			PaddingLeft(1)
)
