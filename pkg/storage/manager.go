package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Manager handles the download destination layout: one directory per
// product under the base path, one file per format inside it.
type Manager struct {
	baseDir string
}

// NewManager creates a storage manager rooted at baseDir, creating the
// directory if needed. A failure here means the destination is unusable.
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{baseDir: baseDir}, nil
}

// BaseDir returns the base output directory path
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// EnsureProductDir creates the directory for a product and returns its
// path. An already existing directory is not an error; anything else is.
func (m *Manager) EnsureProductDir(name string) (string, error) {
	dir := filepath.Join(m.baseDir, name)

	if err := os.Mkdir(dir, 0755); err != nil && !os.IsExist(err) {
		return "", fmt.Errorf("failed to create product directory: %w", err)
	}

	return dir, nil
}

// FilePath returns the destination path for one format of a product
func (m *Manager) FilePath(name, ext string) string {
	return filepath.Join(m.baseDir, name, name+"."+ext)
}

// Exists reports whether a regular file is already present at path
func (m *Manager) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Save streams the reader's content into path, creating or truncating the
// file. The content is written incrementally, never buffered whole. An
// interrupted write leaves a partial file behind; a later run will see it
// as already downloaded unless overwrite is forced.
func (m *Manager) Save(r io.Reader, path string) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		return written, fmt.Errorf("failed to write file data: %w", err)
	}
	if closeErr != nil {
		return written, fmt.Errorf("failed to close file: %w", closeErr)
	}

	return written, nil
}
