package models

import (
	"strings"
	"time"
)

// Album is a single photo album from the Kidplan catalog
type Album struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	URL        string `json:"url" yaml:"url"`
	ImageCount *int   `json:"image_count,omitempty" yaml:"image_count,omitempty"`
}

// Kindergarten is a tenant the account has access to
type Kindergarten struct {
	ID   int64  `json:"Id"`
	Name string `json:"Name"`
}

// Credentials are the login details for a Kidplan account
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DownloadSettings control a single download run
type DownloadSettings struct {
	OutDir        string
	DelayMs       int
	LimitPerAlbum int
	DryRun        bool
	WriteMetadata bool
}

// Delay returns the courtesy pause before each image request
func (s DownloadSettings) Delay() time.Duration {
	if s.DelayMs <= 0 {
		return 0
	}
	return time.Duration(s.DelayMs) * time.Millisecond
}

// Progress status values
const (
	StatusDownloaded = "downloaded"
	StatusSkipped    = "skipped"
	StatusDryRun     = "dry-run"
	statusFailed     = "failed: "
)

// FailedStatus formats a failure status with its reason
func FailedStatus(reason string) string {
	return statusFailed + reason
}

// IsFailedStatus reports whether status describes a failure
func IsFailedStatus(status string) bool {
	return strings.HasPrefix(status, statusFailed)
}

// DownloadProgress is emitted once per processed image
type DownloadProgress struct {
	AlbumTitle string `json:"album_title"`
	AlbumIndex int    `json:"album_index"`
	AlbumTotal int    `json:"album_total"`
	ImageIndex int    `json:"image_index"`
	ImageTotal int    `json:"image_total"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
}

// DownloadResult summarizes a finished run
type DownloadResult struct {
	TotalAlbums int `json:"total_albums"`
	TotalImages int `json:"total_images"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}
