package scraper

import (
	"context"
	"fmt"
	"time"

	"kidplan-downloader/internal/downloader"
	"kidplan-downloader/pkg/discovery"
	errs "kidplan-downloader/pkg/errors"
	"kidplan-downloader/pkg/kidplan"
	"kidplan-downloader/pkg/logger"
	"kidplan-downloader/pkg/manifest"
	"kidplan-downloader/pkg/metadata"
	"kidplan-downloader/pkg/models"
	"kidplan-downloader/pkg/storage"
)

// Scraper orchestrates the album download process
type Scraper struct {
	session *Session
	sink    ProgressSink
	logger  logger.Logger
}

// New creates a new Scraper. A nil sink discards progress events.
func New(session *Session, sink ProgressSink, log logger.Logger) *Scraper {
	if sink == nil {
		sink = NopSink{}
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		session: session,
		sink:    sink,
		logger:  log.WithField("component", "scraper"),
	}
}

// FetchAlbums returns the album catalog of the logged-in account
func (s *Scraper) FetchAlbums(ctx context.Context) ([]models.Album, error) {
	client, err := s.session.Client()
	if err != nil {
		return nil, err
	}
	return kidplan.FetchAlbums(ctx, client)
}

// DownloadAlbums downloads every picture of albums that is not yet in the
// manifest. Per-picture and per-album failures are counted and reported
// through the sink; only precondition and setup failures return an error.
func (s *Scraper) DownloadAlbums(ctx context.Context, albums []models.Album, settings models.DownloadSettings) (models.DownloadResult, error) {
	if !s.session.tryStart() {
		return models.DownloadResult{}, errs.ErrRunInProgress
	}
	defer s.session.finish()

	client, err := s.session.Client()
	if err != nil {
		return models.DownloadResult{}, err
	}
	s.session.resetCancel()

	manifestPath := s.session.ManifestPath()
	store := manifest.Open(manifestPath, s.logger)
	store.Remember(s.session.Manifest())

	files, err := storage.NewManager(settings.OutDir)
	if err != nil {
		return models.DownloadResult{}, fmt.Errorf("download setup failed: %w", err)
	}
	if !settings.DryRun {
		if err := manifest.Ensure(manifestPath); err != nil {
			s.logger.WithError(err).Warn("Could not create manifest file")
		}
	}

	r := &run{
		scraper:  s,
		ctx:      ctx,
		client:   client,
		files:    files,
		store:    store,
		fetcher:  downloader.New(client, files, settings.Delay(), s.logger),
		settings: settings,
		seen:     make(map[string]struct{}),
		result:   models.DownloadResult{TotalAlbums: len(albums)},
		total:    len(albums),
	}

	start := time.Now()
	s.logger.InfoWithFields("Download run started", map[string]interface{}{
		"albums":   len(albums),
		"out_dir":  settings.OutDir,
		"manifest": manifestPath,
		"dry_run":  settings.DryRun,
	})

	for i, album := range albums {
		if r.stopped() {
			break
		}
		cont, err := r.album(i+1, album)
		if err != nil {
			s.session.SetManifest(store.Snapshot())
			return r.result, err
		}
		if !cont {
			break
		}
	}

	s.session.SetManifest(store.Snapshot())
	if r.stopped() {
		s.logger.Info("Download run cancelled")
	}
	logger.LogRunSummary(s.logger, r.result, time.Since(start))
	return r.result, nil
}

// run holds the transient state of one DownloadAlbums call
type run struct {
	scraper  *Scraper
	ctx      context.Context
	client   *kidplan.Client
	files    *storage.Manager
	store    *manifest.Store
	fetcher  *downloader.Downloader
	settings models.DownloadSettings
	seen     map[string]struct{}
	result   models.DownloadResult
	total    int
}

func (r *run) stopped() bool {
	return r.scraper.session.IsCancelled() || r.ctx.Err() != nil
}

// album processes one album. It returns false when the run must stop.
func (r *run) album(index int, album models.Album) (bool, error) {
	log := r.scraper.logger.WithFields(map[string]interface{}{
		"album_id": album.ID,
		"album_no": index,
	})

	page, err := r.client.GetText(r.ctx, album.URL)
	if err != nil {
		if r.ctx.Err() != nil {
			return false, nil
		}
		log.WithError(err).Warn("Album page fetch failed, skipping album")
		return true, nil
	}
	if discovery.IsLoginPage(page) {
		log.Warn("Album page is the sign-in form, the session may have expired. Skipping album")
		return true, nil
	}

	urls := discovery.ExtractImageURLs(page, album.URL)
	if limit := r.settings.LimitPerAlbum; limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}

	title := album.Title
	if title == "" || title == kidplan.UntitledAlbum {
		if heading := discovery.ExtractTitle(page); heading != "" {
			title = heading
		}
	}

	dir, err := r.files.AlbumDir(title)
	if err != nil {
		return false, fmt.Errorf("album %q: %w", title, err)
	}

	log.InfoWithFields("Processing album", map[string]interface{}{
		"title":    title,
		"pictures": len(urls),
	})

	var saved []metadata.PictureRecord
	for i, u := range urls {
		if r.stopped() {
			r.writeMetadata(dir, album, title, saved)
			return false, nil
		}

		p := models.DownloadProgress{
			AlbumTitle: title,
			AlbumIndex: index,
			AlbumTotal: r.total,
			ImageIndex: i + 1,
			ImageTotal: len(urls),
		}
		record, cont := r.picture(dir, u, p)
		if record != nil {
			saved = append(saved, *record)
		}
		if !cont {
			r.writeMetadata(dir, album, title, saved)
			return false, nil
		}
	}

	r.writeMetadata(dir, album, title, saved)
	return true, nil
}

// picture processes one picture URL. It returns the saved picture, if any,
// and false when the run was cancelled before an outcome was reached.
func (r *run) picture(dir, u string, p models.DownloadProgress) (*metadata.PictureRecord, bool) {
	id, hasID := discovery.ExtractIdentity(u)
	if hasID {
		p.Filename = storage.IdentityFilename(id, discovery.ExtensionOf(u))
	} else {
		p.Filename = storage.FallbackFilename(p.ImageIndex, u)
	}

	if _, dup := r.seen[u]; dup {
		r.skip(p)
		return nil, true
	}
	r.seen[u] = struct{}{}

	if hasID && r.store.Contains(id) {
		r.skip(p)
		return nil, true
	}

	if r.files.Exists(dir, p.Filename) {
		if hasID && !r.settings.DryRun {
			_ = r.store.Record(id)
		}
		r.skip(p)
		return nil, true
	}

	if r.settings.DryRun {
		p.Status = models.StatusDryRun
		r.emit(p)
		return nil, true
	}

	res := r.fetcher.Run(r.ctx, downloader.Job{URL: u, Dir: dir, Filename: p.Filename})
	if res.Cancelled {
		return nil, false
	}
	if !res.Success {
		r.result.Failed++
		p.Status = models.FailedStatus(failureReason(res.Error))
		r.emit(p)
		return nil, true
	}

	r.result.TotalImages++
	if hasID {
		_ = r.store.Record(id)
	}
	p.Status = models.StatusDownloaded
	r.emit(p)

	return &metadata.PictureRecord{
		Filename:     p.Filename,
		URL:          u,
		ID:           id,
		Size:         res.Size,
		DownloadedAt: time.Now(),
	}, true
}

func (r *run) skip(p models.DownloadProgress) {
	r.result.Skipped++
	p.Status = models.StatusSkipped
	r.emit(p)
}

func (r *run) emit(p models.DownloadProgress) {
	logger.LogImage(r.scraper.logger, p)
	emit(r.scraper.sink, p, r.scraper.logger)
}

// writeMetadata updates the album sidecar; failures are only logged
func (r *run) writeMetadata(dir string, album models.Album, title string, saved []metadata.PictureRecord) {
	if !r.settings.WriteMetadata || r.settings.DryRun || len(saved) == 0 {
		return
	}
	if err := metadata.Update(dir, album, title, saved); err != nil {
		r.scraper.logger.WithError(err).WarnWithFields("Album metadata not written", map[string]interface{}{
			"album_id": album.ID,
		})
	}
}

// failureReason renders a picture failure for the progress status
func failureReason(err error) string {
	if err == nil {
		return "unknown error"
	}
	if code := errs.StatusCode(err); code > 0 {
		return fmt.Sprintf("HTTP %d", code)
	}
	return err.Error()
}
