// Package filesystem routes every file access through a swappable afero backend.
// Tests switch to an in-memory backend with SetMemMapFs.
package filesystem

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend.
func API() afero.Afero {
	return backend
}

// SetOsFs switches to the operating system filesystem.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs switches to a fresh in-memory filesystem.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// WriteAtomic writes data to a temporary sibling of path and renames it
// over path, so readers never observe a partially written file.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := backend.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}

	if err := backend.Rename(tmp, path); err != nil {
		_ = backend.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}

// Delete removes a file, or a directory with everything below it.
func Delete(path string) error {
	stat, err := backend.Stat(path)
	if err != nil {
		return err
	}

	if stat.IsDir() {
		return backend.RemoveAll(path)
	}

	return backend.Remove(path)
}
