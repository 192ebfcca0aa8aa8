package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	errs "kidplan-downloader/pkg/errors"
)

// Manager handles file storage under one output directory
type Manager struct {
	outputDir string
}

// NewManager creates a new storage manager, creating outputDir if needed
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeFilesystem, "failed to create output directory", err)
	}
	return &Manager{outputDir: outputDir}, nil
}

// AlbumDir creates and returns the directory for an album title
func (m *Manager) AlbumDir(title string) (string, error) {
	dir := filepath.Join(m.outputDir, Slugify(title))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errs.Wrap(errs.ErrorTypeFilesystem, "failed to create album directory", err)
	}
	return dir, nil
}

// Exists reports whether filename is already present in dir
func (m *Manager) Exists(dir, filename string) bool {
	_, err := os.Stat(filepath.Join(dir, filename))
	return err == nil
}

// Save writes r to dir/filename atomically and returns the bytes written
func (m *Manager) Save(dir, filename string, r io.Reader) (int64, error) {
	target := filepath.Join(dir, filename)

	out, err := os.CreateTemp(dir, "."+filename+".*.tmp")
	if err != nil {
		return 0, errs.Wrap(errs.ErrorTypeFilesystem, "failed to create temporary file", err)
	}
	tempFile := out.Name()

	written, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return written, errs.Wrap(errs.ErrorTypeNetwork, "failed to read picture data", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return written, errs.Wrap(errs.ErrorTypeFilesystem, "failed to close file", closeErr)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return written, errs.Wrap(errs.ErrorTypeFilesystem, fmt.Sprintf("failed to write %s", filename), err)
	}

	return written, nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}
