package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "kidplan-downloader/pkg/errors"
)

func TestManagerSave(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")

	manager, err := NewManager(root)
	require.NoError(t, err)
	assert.DirExists(t, root)

	dir, err := manager.AlbumDir("Summer trip!")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Summer-trip"), dir)

	assert.False(t, manager.Exists(dir, "id-7.jpg"))

	n, err := manager.Save(dir, "id-7.jpg", bytes.NewReader([]byte("jpeg bytes")))
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.True(t, manager.Exists(dir, "id-7.jpg"))

	data, err := os.ReadFile(filepath.Join(dir, "id-7.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestManagerSaveReadFailureLeavesNoFile(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)
	dir, err := manager.AlbumDir("a")
	require.NoError(t, err)

	_, err = manager.Save(dir, "id-1.jpg", failingReader{})

	assert.Error(t, err)
	assert.False(t, manager.Exists(dir, "id-1.jpg"))
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestManagerSaveIntoMissingDirFails(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	_, err = manager.Save(filepath.Join(manager.OutputDir(), "missing"), "id-1.jpg", strings.NewReader("x"))

	assert.Equal(t, errs.ErrorTypeFilesystem, errs.TypeOf(err))
}

func TestNewManagerFailsOnFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := NewManager(filepath.Join(file, "sub"))

	assert.Equal(t, errs.ErrorTypeFilesystem, errs.TypeOf(err))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"My Kid's Åpen Dag!":  "My-Kid-s-pen-Dag",
		"  --Hello__World--":  "Hello-World",
		"Tur til skogen 2024": "Tur-til-skogen-2024",
		"ÆØÅ":                 DefaultAlbumDir,
		"":                    DefaultAlbumDir,
	}

	clean := regexp.MustCompile(`^[A-Za-z0-9]+(-[A-Za-z0-9]+)*$`)
	for in, want := range tests {
		got := Slugify(in)
		assert.Equal(t, want, got, in)
		assert.Regexp(t, clean, got)
	}
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "id-42.jpg", IdentityFilename("42", ".jpg"))
	assert.Equal(t, "id-a-b.png", IdentityFilename("a/b", ".png"))

	url := "https://img.kidplan.com/albumpicture/full.jpg"
	name := FallbackFilename(3, url)
	assert.Regexp(t, `^image-0003-[0-9a-f]{10}\.jpg$`, name)
	assert.Equal(t, name, FallbackFilename(3, url))
	assert.NotEqual(t, name, FallbackFilename(3, url+"?x=1"))
}
