// Package home manages the regtext home directory layout.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the regtext home directory.
	DefaultDirName = ".regtext"

	// DownloadsDirName is the subdirectory holding crawled source documents.
	DownloadsDirName = "downloads"

	// TextsDirName is the subdirectory holding extracted text output.
	TextsDirName = "texts"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the regtext home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.regtext).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DownloadsPath returns the path to the downloads directory.
func (d *Dir) DownloadsPath() string {
	return filepath.Join(d.path, DownloadsDirName)
}

// TextsPath returns the path to the extracted text directory.
func (d *Dir) TextsPath() string {
	return filepath.Join(d.path, TextsDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.DownloadsPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create downloads directory: %w", err)
	}
	if err := os.MkdirAll(d.TextsPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create texts directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
