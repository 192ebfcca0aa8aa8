package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidplan-downloader/pkg/models"
)

func TestFilterAlbums(t *testing.T) {
	albums := []models.Album{
		{ID: "1", Title: "Spring"},
		{ID: "2", Title: "Summer"},
		{ID: "3", Title: "Autumn"},
	}

	all, err := filterAlbums(albums, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	picked, err := filterAlbums(albums, []string{"3", "1", "404"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "1", picked[0].ID, "catalog order is kept")
	assert.Equal(t, "3", picked[1].ID)

	_, err = filterAlbums(albums, []string{"404"})
	assert.Error(t, err)
}

func TestLoadConfigAppliesChangedFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("KIDPLAN_OUT_DIR", "")
	t.Setenv("KIDPLAN_DELAY_MS", "")

	require.NoError(t, downloadCmd.Flags().Set("out-dir", "photos"))
	require.NoError(t, downloadCmd.Flags().Set("delay", "750"))
	require.NoError(t, downloadCmd.Flags().Set("kid", "42"))
	t.Cleanup(func() {
		for _, name := range []string{"out-dir", "delay", "kid"} {
			downloadCmd.Flags().Lookup(name).Changed = false
		}
	})

	cfg, err := loadConfig(downloadCmd)
	require.NoError(t, err)
	assert.Equal(t, "photos", cfg.Download.OutDir)
	assert.Equal(t, 750, cfg.Download.DelayMs)
	assert.Equal(t, int64(42), cfg.Kidplan.KindergartenID)
	assert.Equal(t, 0, cfg.Download.LimitPerAlbum)
}
