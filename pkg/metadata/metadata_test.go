package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidplan-downloader/pkg/models"
)

func TestUpdateCreatesAndMerges(t *testing.T) {
	dir := t.TempDir()
	count := 3
	album := models.Album{ID: "5", Title: "Untitled", URL: "https://app.kidplan.com/bilder/album/5", ImageCount: &count}
	now := time.Now()

	require.NoError(t, Update(dir, album, "Sommerfest", []PictureRecord{
		{Filename: "id-2.jpg", ID: "2", Size: 10, DownloadedAt: now},
	}))
	require.NoError(t, Update(dir, album, "Sommerfest", []PictureRecord{
		{Filename: "id-1.jpg", ID: "1", Size: 20, DownloadedAt: now},
		{Filename: "id-2.jpg", ID: "2", Size: 11, DownloadedAt: now},
	}))

	meta, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "5", meta.ID)
	assert.Equal(t, "Sommerfest", meta.Title)
	require.Len(t, meta.Pictures, 2)
	assert.Equal(t, "id-1.jpg", meta.Pictures[0].Filename)
	assert.Equal(t, int64(11), meta.Pictures[1].Size)
	assert.False(t, meta.UpdatedAt.IsZero())
}

func TestUpdateReplacesCorruptSidecar(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{broken"), 0644))

	err := Update(dir, models.Album{ID: "1"}, "A", []PictureRecord{{Filename: "x.jpg"}})

	require.NoError(t, err)
	meta, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, meta.Pictures, 1)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
