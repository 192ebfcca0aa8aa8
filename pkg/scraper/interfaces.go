package scraper

import (
	"kidplan-downloader/pkg/logger"
	"kidplan-downloader/pkg/models"
)

// ProgressSink receives one event per processed picture. Emit is called
// synchronously from the download loop and should return quickly.
type ProgressSink interface {
	Emit(p models.DownloadProgress)
}

// ProgressFunc adapts a function to ProgressSink
type ProgressFunc func(p models.DownloadProgress)

// Emit calls f(p)
func (f ProgressFunc) Emit(p models.DownloadProgress) {
	f(p)
}

// NopSink discards every event
type NopSink struct{}

// Emit does nothing
func (NopSink) Emit(models.DownloadProgress) {}

// MultiSink fans events out to several sinks
type MultiSink []ProgressSink

// Emit forwards p to every sink
func (m MultiSink) Emit(p models.DownloadProgress) {
	for _, sink := range m {
		if sink != nil {
			sink.Emit(p)
		}
	}
}

// emit delivers p and drops anything that goes wrong in the sink
func emit(sink ProgressSink, p models.DownloadProgress, log logger.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.WarnWithFields("Progress sink panicked", map[string]interface{}{
				"panic":    r,
				"filename": p.Filename,
			})
		}
	}()
	sink.Emit(p)
}
