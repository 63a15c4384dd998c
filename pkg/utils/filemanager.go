// =============================================================================
// Sales Report Bot - File Manager Utility
// =============================================================================
//
// This module provides the filesystem helpers used around document delivery:
//   - Spooling a generated document under a unique, per-delivery directory
//   - Guaranteed removal of a spooled document
//   - Removal of stale spool entries left by a crashed process
//   - Saving a delivered document into an output directory
//
// SPOOL LAYOUT:
//   <spool_dir>/<uuid>/<file name>
//
//   Every delivery gets its own UUID directory, so two reports generated in
//   the same second for the same user never share a path.
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SPOOL
// =============================================================================

// Spool stores transient documents until they are delivered.
type Spool struct {
	// Dir is the spool root directory.
	Dir string
}

// NewSpool creates a Spool rooted at dir.
func NewSpool(dir string) *Spool {
	return &Spool{Dir: dir}
}

// EnsureDir creates the spool root if it does not exist.
func (s *Spool) EnsureDir() error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create spool directory %s: %w", s.Dir, err)
	}
	return nil
}

// Write stores data as name in a fresh directory of the spool.
//
// RETURNS:
//   - The path of the written file.
//   - A cleanup function removing the file and its directory. It is safe to
//     call more than once and must be called on every exit path.
//   - An error if the file cannot be written. Nothing is left behind then.
func (s *Spool) Write(name string, data []byte) (string, func() error, error) {
	dir := filepath.Join(s.Dir, uuid.New().String())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", nil, fmt.Errorf("failed to create spool entry: %w", err)
	}

	cleanup := func() error {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove spool entry %s: %w", dir, err)
		}
		return nil
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		_ = cleanup()
		return "", nil, fmt.Errorf("failed to write spooled document: %w", err)
	}

	return path, cleanup, nil
}

// CleanStale removes spool entries older than maxAge.
//
// RETURNS:
//   - The number of entries removed.
//   - An error if the spool cannot be read or an entry cannot be removed.
func (s *Spool) CleanStale(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read spool: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.Dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to clean spool: %w", err)
		}
		removed++
	}

	return removed, nil
}

// =============================================================================
// OUTPUT FILES
// =============================================================================

// SaveFile writes data to dir/name. The content is written to a temporary
// file first and renamed into place, so readers never see a partial file.
func SaveFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	final := filepath.Join(dir, filepath.Base(name))
	tmp := filepath.Join(dir, "."+uuid.New().String()+".tmp")

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return final, nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
