package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"kidplan-downloader/pkg/models"
)

// LogRequest logs a finished HTTP request at a level matching its status
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 500:
		l.WarnWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogImage logs the outcome of a single image
func LogImage(l Logger, p models.DownloadProgress) {
	fields := map[string]interface{}{
		"album":    p.AlbumTitle,
		"album_no": p.AlbumIndex,
		"image_no": p.ImageIndex,
		"images":   p.ImageTotal,
		"filename": p.Filename,
		"status":   p.Status,
	}

	if models.IsFailedStatus(p.Status) {
		l.WarnWithFields("Image failed", fields)
		return
	}
	l.DebugWithFields("Image processed", fields)
}

// LogRunSummary logs the summary of a download run
func LogRunSummary(l Logger, r models.DownloadResult, elapsed time.Duration) {
	l.InfoWithFields("Download run finished", map[string]interface{}{
		"albums":     r.TotalAlbums,
		"downloaded": r.TotalImages,
		"skipped":    r.Skipped,
		"failed":     r.Failed,
		"elapsed":    elapsed,
	})
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}

func (n *nopLogger) GetZerolog() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
