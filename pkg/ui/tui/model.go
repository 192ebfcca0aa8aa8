package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kidplan-downloader/pkg/models"
)

// Counters tallies picture outcomes seen by the interface
type Counters struct {
	Downloaded int
	Skipped    int
	Failed     int
	DryRun     int
}

// Model represents the TUI model
type Model struct {
	spinner     spinner.Model
	albumBar    progress.Model
	overallBar  progress.Model
	startTime   time.Time
	onCancel    func()
	cancelAsked bool

	// Current position
	albumTitle string
	albumIndex int
	albumTotal int
	imageIndex int
	imageTotal int
	filename   string

	counters Counters
	done     bool
	result   models.DownloadResult
	err      error

	width          int
	height         int
	showHelp       bool
	logMessages    []LogMessage
	maxLogMessages int
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// NewModel creates a new TUI model. onCancel runs once when the user asks
// to stop the download.
func NewModel(onCancel func()) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentCyan)

	albumBar := progress.New(progress.WithDefaultGradient())
	albumBar.Width = 40
	overallBar := progress.New(progress.WithSolidFill(string(accentGreen)))
	overallBar.Width = 40

	return &Model{
		spinner:        s,
		albumBar:       albumBar,
		overallBar:     overallBar,
		startTime:      time.Now(),
		onCancel:       onCancel,
		maxLogMessages: 50,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// Counters returns the outcome tallies so far
func (m *Model) Counters() Counters {
	return m.counters
}

// Done reports whether the run has finished
func (m *Model) Done() bool {
	return m.done
}

// applyProgress folds one picture outcome into the model
func (m *Model) applyProgress(p models.DownloadProgress) {
	if p.AlbumIndex != m.albumIndex || p.AlbumTitle != m.albumTitle {
		m.AddLogMessage("INFO", fmt.Sprintf("Album %d/%d: %s", p.AlbumIndex, p.AlbumTotal, p.AlbumTitle))
	}

	m.albumTitle = p.AlbumTitle
	m.albumIndex = p.AlbumIndex
	m.albumTotal = p.AlbumTotal
	m.imageIndex = p.ImageIndex
	m.imageTotal = p.ImageTotal
	m.filename = p.Filename

	switch {
	case p.Status == models.StatusDownloaded:
		m.counters.Downloaded++
		m.AddLogMessage("SUCCESS", "Saved "+p.Filename)
	case p.Status == models.StatusSkipped:
		m.counters.Skipped++
	case p.Status == models.StatusDryRun:
		m.counters.DryRun++
		m.AddLogMessage("INFO", "Would download "+p.Filename)
	case models.IsFailedStatus(p.Status):
		m.counters.Failed++
		reason := strings.TrimPrefix(p.Status, "failed: ")
		m.AddLogMessage("ERROR", p.Filename+": "+reason)
	}
}

// finish records the end of the run
func (m *Model) finish(result models.DownloadResult, err error) {
	m.done = true
	m.result = result
	m.err = err

	if err != nil {
		m.AddLogMessage("ERROR", "Download stopped: "+err.Error())
		return
	}
	m.AddLogMessage("SUCCESS", fmt.Sprintf("Finished: %d downloaded, %d skipped, %d failed",
		result.TotalImages, result.Skipped, result.Failed))
}

// requestCancel asks the download to stop, at most once
func (m *Model) requestCancel() {
	if m.cancelAsked {
		return
	}
	m.cancelAsked = true
	m.AddLogMessage("WARN", "Stopping after the current picture...")
	if m.onCancel != nil {
		m.onCancel()
	}
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	color := dimWhite
	switch level {
	case "ERROR":
		color = accentRed
	case "WARN":
		color = accentOrange
	case "SUCCESS":
		color = accentGreen
	case "INFO":
		color = accentCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	// Keep only the last N messages
	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// albumPercent is the share of the current album already processed
func (m *Model) albumPercent() float64 {
	if m.imageTotal == 0 {
		return 0
	}
	return float64(m.imageIndex) / float64(m.imageTotal)
}

// overallPercent counts finished albums plus the current one's share
func (m *Model) overallPercent() float64 {
	if m.done {
		return 1
	}
	if m.albumTotal == 0 {
		return 0
	}
	return (float64(m.albumIndex-1) + m.albumPercent()) / float64(m.albumTotal)
}
