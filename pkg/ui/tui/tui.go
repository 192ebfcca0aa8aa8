package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"kidplan-downloader/pkg/models"
)

// TUI represents the terminal user interface. It receives progress events
// from the download loop and renders them on its own goroutine.
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a new TUI instance. onCancel is called when the user
// presses q or ctrl+c during a run.
func NewTUI(onCancel func(), opts ...tea.ProgramOption) *TUI {
	model := NewModel(onCancel)
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}

	return &TUI{
		program: tea.NewProgram(model, opts...),
		model:   model,
	}
}

// Start runs the TUI until the user quits
func (t *TUI) Start() error {
	_, err := t.program.Run()
	return err
}

// Stop stops the TUI
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// Emit forwards a picture outcome to the interface
func (t *TUI) Emit(p models.DownloadProgress) {
	t.Send(ProgressMsg(p))
}

// Finish reports the end of the run
func (t *TUI) Finish(result models.DownloadResult, err error) {
	t.Send(DoneMsg{Result: result, Err: err})
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}

// LogInfo logs an info message
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Log("INFO", format, args...)
}

// LogWarning logs a warning message
func (t *TUI) LogWarning(format string, args ...interface{}) {
	t.Log("WARN", format, args...)
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Log("ERROR", format, args...)
}
