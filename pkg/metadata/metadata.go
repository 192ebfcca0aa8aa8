package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"kidplan-downloader/pkg/models"
)

// FileName is the sidecar written into every album directory
const FileName = "album.json"

// AlbumMetadata describes a downloaded album
type AlbumMetadata struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	URL        string          `json:"url"`
	ImageCount *int            `json:"image_count,omitempty"`
	Pictures   []PictureRecord `json:"pictures"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// PictureRecord is one downloaded picture
type PictureRecord struct {
	Filename     string    `json:"filename"`
	URL          string    `json:"url"`
	ID           string    `json:"id,omitempty"`
	Size         int64     `json:"size"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// FromAlbum starts the metadata of an album
func FromAlbum(album models.Album, title string) *AlbumMetadata {
	return &AlbumMetadata{
		ID:         album.ID,
		Title:      title,
		URL:        album.URL,
		ImageCount: album.ImageCount,
	}
}

// Merge adds pictures, replacing older records with the same filename
func (m *AlbumMetadata) Merge(pictures ...PictureRecord) {
	byName := make(map[string]int, len(m.Pictures))
	for i, p := range m.Pictures {
		byName[p.Filename] = i
	}
	for _, p := range pictures {
		if i, ok := byName[p.Filename]; ok {
			m.Pictures[i] = p
			continue
		}
		byName[p.Filename] = len(m.Pictures)
		m.Pictures = append(m.Pictures, p)
	}
	sort.Slice(m.Pictures, func(i, j int) bool {
		return m.Pictures[i].Filename < m.Pictures[j].Filename
	})
}

// Save writes the metadata into albumDir
func (m *AlbumMetadata) Save(albumDir string) error {
	m.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(filepath.Join(albumDir, FileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}

// Load reads the metadata of albumDir
func Load(albumDir string) (*AlbumMetadata, error) {
	data, err := os.ReadFile(filepath.Join(albumDir, FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var meta AlbumMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return &meta, nil
}

// Update merges pictures into the album's existing sidecar, creating it
// when missing or unreadable
func Update(albumDir string, album models.Album, title string, pictures []PictureRecord) error {
	meta, err := Load(albumDir)
	if err != nil {
		meta = FromAlbum(album, title)
	} else {
		meta.Title = title
		meta.URL = album.URL
		meta.ImageCount = album.ImageCount
	}
	meta.Merge(pictures...)
	return meta.Save(albumDir)
}
