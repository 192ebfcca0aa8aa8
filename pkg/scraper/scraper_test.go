package scraper

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "kidplan-downloader/pkg/errors"
	"kidplan-downloader/pkg/kidplan"
	"kidplan-downloader/pkg/logger"
	"kidplan-downloader/pkg/manifest"
	"kidplan-downloader/pkg/metadata"
	"kidplan-downloader/pkg/models"
)

const (
	pic7     = "https://img.kidplan.com/albumpicture/?id=7"
	pic8     = "https://img.kidplan.com/albumpicture/?id=8"
	pic9     = "https://img.kidplan.com/albumpicture/?id=9"
	noID     = "https://img.kidplan.com/albumpicture/pic.png"
	albumURL = "https://app.kidplan.com/bilder/album/"
)

type stubResponse struct {
	status int
	body   string
}

// siteStub serves canned responses by exact URL and counts requests
type siteStub struct {
	mu       sync.Mutex
	routes   map[string]stubResponse
	requests map[string]int
}

func newSiteStub() *siteStub {
	return &siteStub{routes: map[string]stubResponse{}, requests: map[string]int{}}
}

func (s *siteStub) page(url, body string)       { s.routes[url] = stubResponse{http.StatusOK, body} }
func (s *siteStub) picture(url, data string)    { s.routes[url] = stubResponse{http.StatusOK, data} }
func (s *siteStub) status(url string, code int) { s.routes[url] = stubResponse{code, ""} }

func (s *siteStub) count(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[url]
}

func (s *siteStub) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	url := req.URL.String()
	s.requests[url]++
	resp, ok := s.routes[url]
	if !ok {
		resp = stubResponse{http.StatusNotFound, "not found"}
	}
	return &http.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(bytes.NewBufferString(resp.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func imgTags(urls ...string) string {
	var b bytes.Buffer
	b.WriteString("<html><body>")
	for _, u := range urls {
		src := u
		if strings.Contains(u, "?") {
			src += "&size=400"
		}
		b.WriteString(`<img src="` + src + `">`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

type recorder struct {
	mu     sync.Mutex
	events []models.DownloadProgress
}

func (r *recorder) Emit(p models.DownloadProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
}

func (r *recorder) statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Status
	}
	return out
}

type fixture struct {
	site     *siteStub
	session  *Session
	log      *logger.TestLogger
	outDir   string
	manifest string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	site := newSiteStub()
	log := logger.NewTestLogger()

	client, err := kidplan.NewClient(
		kidplan.WithHTTPClient(&http.Client{Transport: site}),
		kidplan.WithLogger(log),
	)
	require.NoError(t, err)

	session := NewSession(filepath.Join(dir, "manifest.txt"))
	session.SetClient(client)

	return &fixture{
		site:     site,
		session:  session,
		log:      log,
		outDir:   filepath.Join(dir, "out"),
		manifest: filepath.Join(dir, "manifest.txt"),
	}
}

func (f *fixture) settings() models.DownloadSettings {
	return models.DownloadSettings{OutDir: f.outDir}
}

func (f *fixture) run(t *testing.T, sink ProgressSink, albums []models.Album, settings models.DownloadSettings) models.DownloadResult {
	t.Helper()
	result, err := New(f.session, sink, f.log).DownloadAlbums(context.Background(), albums, settings)
	require.NoError(t, err)
	return result
}

func albumOf(id, title string) models.Album {
	return models.Album{ID: id, Title: title, URL: albumURL + id}
}

func TestDownloadSinglePicture(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", imgTags(pic7))
	f.site.picture(pic7, "JPEGDATA")

	rec := &recorder{}
	result := f.run(t, rec, []models.Album{albumOf("1", "Summer Trip")}, f.settings())

	assert.Equal(t, models.DownloadResult{TotalAlbums: 1, TotalImages: 1}, result)

	data, err := os.ReadFile(filepath.Join(f.outDir, "Summer-Trip", "id-7.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "JPEGDATA", string(data))
	assert.True(t, manifest.Load(f.manifest).Contains("7"))

	require.Len(t, rec.events, 1)
	assert.Equal(t, models.DownloadProgress{
		AlbumTitle: "Summer Trip",
		AlbumIndex: 1,
		AlbumTotal: 1,
		ImageIndex: 1,
		ImageTotal: 1,
		Filename:   "id-7.jpg",
		Status:     models.StatusDownloaded,
	}, rec.events[0])
}

func TestSecondRunSkipsEverything(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", imgTags(pic7, pic8))
	f.site.picture(pic7, "a")
	f.site.picture(pic8, "b")
	albums := []models.Album{albumOf("1", "Trip")}

	first := f.run(t, nil, albums, f.settings())
	require.Equal(t, 2, first.TotalImages)

	// a fresh session only knows what the manifest file says
	f.session.SetManifest(manifest.NewSet())
	rec := &recorder{}
	second := f.run(t, rec, albums, f.settings())

	assert.Equal(t, 0, second.TotalImages)
	assert.Equal(t, first.TotalImages, second.Skipped)
	assert.Equal(t, []string{models.StatusSkipped, models.StatusSkipped}, rec.statuses())
	assert.Equal(t, 1, f.site.count(pic7))
	assert.Equal(t, 1, f.site.count(pic8))

	entries, err := os.ReadDir(filepath.Join(f.outDir, "Trip"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFailedAlbumPageDoesNotStopRun(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", imgTags(pic7))
	f.site.status(albumURL+"2", http.StatusInternalServerError)
	f.site.page(albumURL+"3", imgTags(pic8))
	f.site.picture(pic7, "a")
	f.site.picture(pic8, "b")

	rec := &recorder{}
	result := f.run(t, rec, []models.Album{
		albumOf("1", "One"), albumOf("2", "Two"), albumOf("3", "Three"),
	}, f.settings())

	assert.Equal(t, 3, result.TotalAlbums)
	assert.Equal(t, 2, result.TotalImages)
	require.Len(t, rec.events, 2)
	assert.Equal(t, 3, rec.events[1].AlbumIndex)
	assert.Equal(t, 3, rec.events[1].AlbumTotal)
	assert.NotEmpty(t, f.log.GetMessagesByLevel("WARN"))
}

func TestLoginPageSkipsAlbum(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", `<html><form id="loginForm"></form></html>`)

	rec := &recorder{}
	result := f.run(t, rec, []models.Album{albumOf("1", "One")}, f.settings())

	assert.Equal(t, models.DownloadResult{TotalAlbums: 1}, result)
	assert.Empty(t, rec.events)
}

func TestCancelStopsRunAfterCurrentPicture(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", imgTags(pic7, pic8))
	f.site.page(albumURL+"2", imgTags(pic9))
	f.site.picture(pic7, "a")
	f.site.picture(pic8, "b")
	f.site.picture(pic9, "c")

	var events []models.DownloadProgress
	sink := ProgressFunc(func(p models.DownloadProgress) {
		events = append(events, p)
		f.session.Cancel()
	})

	result := f.run(t, sink, []models.Album{albumOf("1", "One"), albumOf("2", "Two")}, f.settings())

	assert.Equal(t, models.DownloadResult{TotalAlbums: 2, TotalImages: 1}, result)
	require.Len(t, events, 1)
	assert.Equal(t, "id-7.jpg", events[0].Filename)
	assert.Zero(t, f.site.count(pic8))
	assert.Zero(t, f.site.count(albumURL+"2"))
	assert.True(t, f.session.IsCancelled())
}

func TestCancelledContextEmitsNothing(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", imgTags(pic7))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	result, err := New(f.session, rec, f.log).DownloadAlbums(ctx, []models.Album{albumOf("1", "One")}, f.settings())
	require.NoError(t, err)

	assert.Equal(t, models.DownloadResult{TotalAlbums: 1}, result)
	assert.Empty(t, rec.events)
}

func TestNotLoggedIn(t *testing.T) {
	session := NewSession(filepath.Join(t.TempDir(), "m.txt"))

	_, err := New(session, nil, logger.NewNopLogger()).DownloadAlbums(context.Background(), nil, models.DownloadSettings{OutDir: t.TempDir()})
	assert.ErrorIs(t, err, errs.ErrNotLoggedIn)

	_, err = New(session, nil, logger.NewNopLogger()).FetchAlbums(context.Background())
	assert.ErrorIs(t, err, errs.ErrNotLoggedIn)
}

func TestSingleFlight(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", imgTags(pic7))
	f.site.picture(pic7, "a")

	var inner error
	sink := ProgressFunc(func(p models.DownloadProgress) {
		assert.True(t, f.session.Running())
		_, inner = New(f.session, nil, f.log).DownloadAlbums(context.Background(), nil, f.settings())
	})

	f.run(t, sink, []models.Album{albumOf("1", "One")}, f.settings())

	assert.ErrorIs(t, inner, errs.ErrRunInProgress)
	assert.False(t, f.session.Running())
}

func TestExistingFileIsReconciled(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", imgTags(pic7))

	dir := filepath.Join(f.outDir, "One")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "id-7.jpg"), []byte("old"), 0644))

	rec := &recorder{}
	result := f.run(t, rec, []models.Album{albumOf("1", "One")}, f.settings())

	assert.Equal(t, models.DownloadResult{TotalAlbums: 1, Skipped: 1}, result)
	assert.Zero(t, f.site.count(pic7))
	assert.True(t, manifest.Load(f.manifest).Contains("7"))
	assert.True(t, f.session.Manifest().Contains("7"))
}

func TestLimitPerAlbum(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", imgTags(pic9, pic7, pic8))
	f.site.picture(pic7, "a")
	f.site.picture(pic8, "b")

	settings := f.settings()
	settings.LimitPerAlbum = 2

	rec := &recorder{}
	result := f.run(t, rec, []models.Album{albumOf("1", "One")}, settings)

	assert.Equal(t, 2, result.TotalImages)
	require.Len(t, rec.events, 2)
	assert.Equal(t, 2, rec.events[0].ImageTotal)
	assert.Zero(t, f.site.count(pic9))
}

func TestFailedPictureReportsHTTPStatus(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", imgTags(pic7, pic8))
	f.site.status(pic7, http.StatusNotFound)
	f.site.picture(pic8, "b")

	rec := &recorder{}
	result := f.run(t, rec, []models.Album{albumOf("1", "One")}, f.settings())

	assert.Equal(t, models.DownloadResult{TotalAlbums: 1, TotalImages: 1, Failed: 1}, result)
	assert.Equal(t, []string{"failed: HTTP 404", models.StatusDownloaded}, rec.statuses())
	assert.False(t, manifest.Load(f.manifest).Contains("7"))
}

func TestDuplicateURLAcrossAlbumsIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", imgTags(pic7))
	f.site.page(albumURL+"2", imgTags(pic7))
	f.site.picture(pic7, "a")

	rec := &recorder{}
	result := f.run(t, rec, []models.Album{albumOf("1", "One"), albumOf("2", "Two")}, f.settings())

	assert.Equal(t, models.DownloadResult{TotalAlbums: 2, TotalImages: 1, Skipped: 1}, result)
	assert.Equal(t, []string{models.StatusDownloaded, models.StatusSkipped}, rec.statuses())
	assert.Equal(t, 1, f.site.count(pic7))
}

func TestDryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", imgTags(pic7, noID))

	settings := f.settings()
	settings.DryRun = true
	settings.WriteMetadata = true

	rec := &recorder{}
	result := f.run(t, rec, []models.Album{albumOf("1", "One")}, settings)

	assert.Equal(t, models.DownloadResult{TotalAlbums: 1}, result)
	assert.Equal(t, []string{models.StatusDryRun, models.StatusDryRun}, rec.statuses())
	assert.Zero(t, f.site.count(pic7))
	assert.NoFileExists(t, f.manifest)

	entries, err := os.ReadDir(filepath.Join(f.outDir, "One"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPictureWithoutIdentity(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", `<img src="`+noID+`">`)
	f.site.picture(noID, "png")

	rec := &recorder{}
	result := f.run(t, rec, []models.Album{albumOf("1", "One")}, f.settings())

	assert.Equal(t, 1, result.TotalImages)
	require.Len(t, rec.events, 1)
	assert.Regexp(t, `^image-0001-[0-9a-f]{10}\.jpg$`, rec.events[0].Filename)
	assert.Zero(t, manifest.Load(f.manifest).Len())
}

func TestUntitledAlbumUsesPageHeading(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", `<h2>Winter Fun</h2>`+imgTags(pic7))
	f.site.picture(pic7, "a")

	rec := &recorder{}
	settings := f.settings()
	settings.WriteMetadata = true
	f.run(t, rec, []models.Album{albumOf("1", kidplan.UntitledAlbum)}, settings)

	require.Len(t, rec.events, 1)
	assert.Equal(t, "Winter Fun", rec.events[0].AlbumTitle)

	meta, err := metadata.Load(filepath.Join(f.outDir, "Winter-Fun"))
	require.NoError(t, err)
	assert.Equal(t, "Winter Fun", meta.Title)
	require.Len(t, meta.Pictures, 1)
	assert.Equal(t, "id-7.jpg", meta.Pictures[0].Filename)
	assert.Equal(t, "7", meta.Pictures[0].ID)
}

func TestPanickingSinkDoesNotAbortRun(t *testing.T) {
	f := newFixture(t)
	f.site.page(albumURL+"1", imgTags(pic7, pic8))
	f.site.picture(pic7, "a")
	f.site.picture(pic8, "b")

	sink := ProgressFunc(func(models.DownloadProgress) { panic("boom") })
	result := f.run(t, sink, []models.Album{albumOf("1", "One")}, f.settings())

	assert.Equal(t, 2, result.TotalImages)
	assert.True(t, f.log.HasMessage("Progress sink panicked"))
}

func TestFetchAlbumsUsesSessionClient(t *testing.T) {
	f := newFixture(t)

	_, err := New(f.session, nil, f.log).FetchAlbums(context.Background())
	// the stub answers unknown URLs with 404
	assert.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errs.StatusCode(err))
}
