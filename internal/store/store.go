// Package store persists events and settings as JSON documents in the
// application data directory and keeps the API key in the OS keyring.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tartampluch/go-caltemp/internal/config"
)

// Store reads and writes the documents of one data directory.
// Writes are serialized; readers see either the old or the new file.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New returns a Store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the per-user application data directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrConfigDir, err)
	}
	return filepath.Join(base, config.AppID), nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// writeAtomic replaces path with data through a temp file in the same
// directory, so a crash never leaves a truncated document behind.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	tmp, err := os.CreateTemp(dir, config.TempFilePattern)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrAtomicWrite, err)
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", config.ErrAtomicWrite, err)
	}

	// Flush and close before chmod/rename.
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", config.ErrAtomicWrite, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrAtomicWrite, err)
	}

	if err = os.Chmod(tmpName, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrAtomicWrite, err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%s: %w", config.ErrAtomicWrite, err)
	}
	return nil
}
