// Package store keeps the latest aggregation result as a JSON snapshot file.
// Commits write a temporary sibling and rename it into place, so readers see either
// the previous snapshot or the new one, never a partial file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsdesk/pkg/domain"
)

// ErrNoSnapshot is returned by Read when no snapshot was committed yet
var ErrNoSnapshot = errors.New("snapshot not found")

// Snapshot is a file backed article snapshot
type Snapshot struct {
	path string
}

// New makes a Snapshot stored at path. The parent directory is created on first Commit.
func New(path string) *Snapshot {
	return &Snapshot{path: path}
}

// Path of the snapshot file
func (s *Snapshot) Path() string { return s.path }

// Commit replaces the snapshot with articles. On failure the previous snapshot stays intact.
func (s *Snapshot) Commit(articles []domain.Article) error {
	if articles == nil {
		articles = []domain.Article{}
	}
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal articles: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}

	// temp file in the same directory, rename is atomic only within a filesystem
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tmp.Close()
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			lgr.Printf("[WARN] failed to remove temp file %s: %v", tmpName, rmErr)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // snapshot is public data
		return fmt.Errorf("chmod temp file %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpName, s.path, err)
	}
	committed = true

	lgr.Printf("[INFO] snapshot %s committed, %d articles", s.path, len(articles))
	return nil
}

// Read returns the committed articles. Missing snapshot is reported as ErrNoSnapshot,
// unreadable or corrupt content as a wrapped error.
func (s *Snapshot) Read() ([]domain.Article, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var articles []domain.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	return articles, nil
}

// Modified returns the time of the last commit
func (s *Snapshot) Modified() (time.Time, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, ErrNoSnapshot
		}
		return time.Time{}, fmt.Errorf("stat snapshot %s: %w", s.path, err)
	}
	return fi.ModTime(), nil
}
