package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const logo = `╦╔═╦╔╦╗╔═╗╦  ╔═╗╔╗╔
╠╩╗║ ║║╠═╝║  ╠═╣║║║
╩ ╩╩═╩╝╩  ╩═╝╩ ╩╝╚╝  album downloader`

// View renders the entire TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	width := m.width - 2
	if width > 100 {
		width = 100
	}

	sections := []string{
		logoStyle.Render(logo),
		m.renderProgressPanel(width),
		m.renderStatsPanel(width),
		m.renderLogsPanel(width),
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp(width))
	} else {
		sections = append(sections, helpStyle.Render(m.hint()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) hint() string {
	switch {
	case m.done:
		return "Done. Press q or enter to exit"
	case m.cancelAsked:
		return "Stopping..."
	default:
		return "q: stop  ?: help"
	}
}

// renderProgressPanel shows the current album and both progress bars
func (m *Model) renderProgressPanel(width int) string {
	title := titleStyle.Render(" PROGRESS ")

	status := m.spinner.View() + " "
	switch {
	case m.done && m.err != nil:
		status = errorStyle.Render("✗ ")
	case m.done:
		status = successStyle.Render("✓ ")
	}

	album := "Waiting for the first album..."
	if m.albumTotal > 0 {
		album = fmt.Sprintf("Album %d/%d  %s", m.albumIndex, m.albumTotal, m.albumTitle)
	}

	barWidth := width - 20
	if barWidth < 10 {
		barWidth = 10
	}
	m.albumBar.Width = barWidth
	m.overallBar.Width = barWidth

	lines := []string{
		status + statsValueStyle.Render(truncate(album, width-6)),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Album   "), m.albumBar.ViewAs(m.albumPercent())),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Overall "), m.overallBar.ViewAs(m.overallPercent())),
	}
	if m.filename != "" {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("Picture %d/%d  %s", m.imageIndex, m.imageTotal, m.filename)))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")),
	)
}

// renderStatsPanel renders the outcome counters
func (m *Model) renderStatsPanel(width int) string {
	title := titleStyle.Render(" STATS ")

	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatDuration(time.Since(m.startTime)))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Downloaded:"), successStyle.Render(fmt.Sprint(m.counters.Downloaded))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Skipped:"), dimStyle.Render(fmt.Sprint(m.counters.Skipped))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Failed:"), errorStyle.Render(fmt.Sprint(m.counters.Failed))),
	}
	if m.counters.DryRun > 0 {
		stats = append(stats, fmt.Sprintf("%s %s", statsLabelStyle.Render("Dry run:"), warningStyle.Render(fmt.Sprint(m.counters.DryRun))))
	}
	if m.cancelAsked && !m.done {
		stats = append(stats, warningStyle.Render("⏸  STOPPING"))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(stats, "\n")),
	)
}

// renderLogsPanel renders the most recent log lines
func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" LOG ")

	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}

	var logs []string
	for _, log := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, truncate(log.Message, width-25)))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = dimStyle.Render("No logs yet...")
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderHelp renders the help panel
func (m *Model) renderHelp(width int) string {
	help := `  q / ctrl+c  Stop after the current picture, then exit once done
  ?           Toggle this help
  ctrl+l      Clear the log

  ` + successStyle.Render("Green") + `  saved    ` + errorStyle.Render("Red") + `  failed    ` + warningStyle.Render("Orange") + `  dry run`

	return panelStyle.Width(width).Render(help)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if limit < 4 || len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}

// formatDuration formats a duration as mm:ss or hh:mm:ss
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
