package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"kidplan-downloader/pkg/logger"
	"kidplan-downloader/pkg/ratelimit"
)

// Job is a single picture to fetch and store
type Job struct {
	URL      string
	Dir      string
	Filename string
}

// Result represents the outcome of a job
type Result struct {
	Job       Job
	Success   bool
	Cancelled bool
	Error     error
	Duration  time.Duration
	Size      int64
}

// PictureFetcher opens a picture for reading
type PictureFetcher interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// PictureStorage writes a picture to disk
type PictureStorage interface {
	Save(dir, filename string, r io.Reader) (int64, error)
}

// Downloader fetches pictures one at a time with a courtesy pause before
// each request
type Downloader struct {
	client  PictureFetcher
	storage PictureStorage
	delay   time.Duration
	logger  logger.Logger
}

// New creates a new Downloader
func New(client PictureFetcher, storage PictureStorage, delay time.Duration, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{
		client:  client,
		storage: storage,
		delay:   delay,
		logger:  log,
	}
}

// Run pauses, downloads job.URL and writes it to job.Dir/job.Filename.
// A context cancelled during the pause or the request yields a cancelled
// result rather than a failure.
func (d *Downloader) Run(ctx context.Context, job Job) Result {
	start := time.Now()
	result := Result{Job: job}

	if err := ratelimit.Sleep(ctx, d.delay); err != nil {
		result.Cancelled = true
		result.Error = err
		return result
	}

	body, err := d.client.Download(ctx, job.URL)
	if err != nil {
		result.Duration = time.Since(start)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			result.Cancelled = true
			result.Error = err
			return result
		}
		result.Error = fmt.Errorf("download failed: %w", err)

		d.logger.WarnWithFields("Failed to download picture", map[string]interface{}{
			"filename": job.Filename,
			"error":    err.Error(),
			"duration": result.Duration,
		})
		return result
	}
	defer body.Close()

	size, err := d.storage.Save(job.Dir, job.Filename, body)
	result.Size = size
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)

		d.logger.WarnWithFields("Failed to save picture", map[string]interface{}{
			"filename": job.Filename,
			"error":    err.Error(),
			"size":     size,
		})
		return result
	}

	result.Success = true
	d.logger.DebugWithFields("Picture saved", map[string]interface{}{
		"filename": job.Filename,
		"size":     size,
		"duration": result.Duration,
	})
	return result
}
