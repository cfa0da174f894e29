// Package resultstore owns the on-disk convention for audit run output:
// file naming, per-site enumeration, and deletion of consumed results.
package resultstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/logger"
)

const dirPermissions = 0o750

// Store manages result files inside a single audit directory.
type Store struct {
	dir    string
	logger logger.Logger
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string, log logger.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("resultstore: audit directory is required")
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("resultstore: create audit directory: %w", err)
	}

	return &Store{dir: dir, logger: log}, nil
}

// Dir returns the audit directory.
func (s *Store) Dir() string {
	return s.dir
}

// KeyFor computes the result key for one audit job.
func (s *Store) KeyFor(siteID int64, device, url string, run int) Key {
	return Key{
		SiteID:  siteID,
		Device:  device,
		URLHash: URLHash(url),
		Run:     run,
	}
}

// Path returns the absolute path a key's result file is stored at.
func (s *Store) Path(key Key) string {
	return filepath.Join(s.dir, key.Filename())
}

// Write stores one raw audit result under its key. An existing file for
// the same key is overwritten.
func (s *Store) Write(key Key, payload []byte) error {
	path := s.Path(key)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("resultstore: write %s: %w", key.Filename(), err)
	}

	return nil
}

// ListForSite returns the paths of all stored result files for a site,
// in filesystem enumeration order. Callers may re-list at any time.
func (s *Store) ListForSite(siteID int64) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("resultstore: list audit directory: %w", err)
	}

	prefix := strconv.FormatInt(siteID, 10) + "-"

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ResultExt) || !strings.HasPrefix(name, prefix) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, name))
	}

	return paths, nil
}

// Delete removes one consumed result file.
func (s *Store) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("resultstore: delete %s: %w", filepath.Base(path), err)
	}

	s.logger.Debug("result file deleted", logger.String("file", filepath.Base(path)))
	return nil
}
