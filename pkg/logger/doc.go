// Package logger provides structured logging for the Kidplan downloader.
//
// It wraps zerolog behind a small interface so packages can take a Logger
// and tests can substitute a TestLogger or a no-op logger.
//
//	err := logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("component", "scraper")
//	log.InfoWithFields("Album done", map[string]interface{}{
//	    "album":  "Summer trip",
//	    "images": 42,
//	})
//
// Console output is colored and human readable. When a log file is
// configured, entries are also appended to it.
package logger
