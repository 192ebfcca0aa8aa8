package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"

	"kidplan-downloader/pkg/models"
)

// ConsoleSink renders progress events as one progress bar per album
type ConsoleSink struct {
	mu    sync.Mutex
	out   io.Writer
	bar   *progressbar.ProgressBar
	album int

	downloaded int
	skipped    int
	failed     int
	dryRun     int
}

// NewConsoleSink creates a sink writing to out
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

// Emit advances the bar of the current album
func (c *ConsoleSink) Emit(p models.DownloadProgress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.AlbumIndex != c.album || c.bar == nil {
		c.finishBar()
		c.album = p.AlbumIndex
		c.bar = c.newBar(p)
	}

	switch {
	case p.Status == models.StatusDownloaded:
		c.downloaded++
	case p.Status == models.StatusSkipped:
		c.skipped++
	case p.Status == models.StatusDryRun:
		c.dryRun++
		fmt.Fprintf(c.out, "\n%s would download %s", Yellow("~"), p.Filename)
	case models.IsFailedStatus(p.Status):
		c.failed++
		fmt.Fprintf(c.out, "\n%s %s: %s\n", Red("✗"), p.Filename, strings.TrimPrefix(p.Status, "failed: "))
	}

	_ = c.bar.Set(p.ImageIndex)
}

// Close finishes the last bar
func (c *ConsoleSink) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishBar()
}

// Counts returns downloaded, skipped, failed and dry-run tallies
func (c *ConsoleSink) Counts() (downloaded, skipped, failed, dryRun int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.downloaded, c.skipped, c.failed, c.dryRun
}

func (c *ConsoleSink) newBar(p models.DownloadProgress) *progressbar.ProgressBar {
	title := p.AlbumTitle
	if len([]rune(title)) > 30 {
		title = string([]rune(title)[:27]) + "..."
	}

	return progressbar.NewOptions(p.ImageTotal,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(fmt.Sprintf("[%d/%d] %s", p.AlbumIndex, p.AlbumTotal, title)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionEnableColorCodes(false),
	)
}

func (c *ConsoleSink) finishBar() {
	if c.bar == nil {
		return
	}
	_ = c.bar.Finish()
	fmt.Fprintln(c.out)
	c.bar = nil
}
