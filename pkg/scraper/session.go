package scraper

import (
	"sync"
	"sync/atomic"

	errs "kidplan-downloader/pkg/errors"
	"kidplan-downloader/pkg/kidplan"
	"kidplan-downloader/pkg/manifest"
)

// Session is the state shared between the shell and download runs. Each
// field has its own lock so a cancel request never waits on a run.
type Session struct {
	clientMu sync.RWMutex
	client   *kidplan.Client

	cancelMu  sync.Mutex
	cancelled bool

	manifestMu   sync.Mutex
	manifest     manifest.Set
	manifestPath string

	running atomic.Bool
}

// NewSession creates a session whose manifest lives at manifestPath
func NewSession(manifestPath string) *Session {
	return &Session{
		manifest:     make(manifest.Set),
		manifestPath: manifestPath,
	}
}

// SetClient stores the authenticated client
func (s *Session) SetClient(c *kidplan.Client) {
	s.clientMu.Lock()
	defer s.clientMu.Unlock()
	s.client = c
}

// Client returns the authenticated client or ErrNotLoggedIn
func (s *Session) Client() (*kidplan.Client, error) {
	s.clientMu.RLock()
	defer s.clientMu.RUnlock()
	if s.client == nil {
		return nil, errs.ErrNotLoggedIn
	}
	return s.client, nil
}

// Cancel asks the running download to stop
func (s *Session) Cancel() {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	s.cancelled = true
}

// IsCancelled reports whether a cancel was requested
func (s *Session) IsCancelled() bool {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	return s.cancelled
}

func (s *Session) resetCancel() {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	s.cancelled = false
}

// ManifestPath returns the manifest file location
func (s *Session) ManifestPath() string {
	s.manifestMu.Lock()
	defer s.manifestMu.Unlock()
	return s.manifestPath
}

// SetManifestPath moves the manifest to another file
func (s *Session) SetManifestPath(path string) {
	s.manifestMu.Lock()
	defer s.manifestMu.Unlock()
	s.manifestPath = path
}

// Manifest returns a copy of the identities known to the session
func (s *Session) Manifest() manifest.Set {
	s.manifestMu.Lock()
	defer s.manifestMu.Unlock()
	return s.manifest.Clone()
}

// SetManifest replaces the identities known to the session
func (s *Session) SetManifest(set manifest.Set) {
	s.manifestMu.Lock()
	defer s.manifestMu.Unlock()
	s.manifest = set.Clone()
}

// Running reports whether a download run is active
func (s *Session) Running() bool {
	return s.running.Load()
}

func (s *Session) tryStart() bool {
	return s.running.CompareAndSwap(false, true)
}

func (s *Session) finish() {
	s.running.Store(false)
}
