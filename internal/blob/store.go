// Package blob implements flat file storage over a user-scoped directory
// hierarchy. Keys are relative slash paths; writes of a single key are
// atomic (temp file + rename) but no cross-key transactional guarantees
// exist.
package blob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docvault/internal/logging"
	"docvault/internal/metrics"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for keys that would escape the store root.
var ErrInvalidKey = errors.New("invalid blob key")

// Store is a filesystem-backed blob store rooted at a single directory.
type Store struct {
	root string
}

// NewStore ensures root exists and returns a store rooted there.
func NewStore(root string) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve blob root: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root %s: %w", absRoot, err)
	}
	return &Store{root: absRoot}, nil
}

// Root returns the store's base directory.
func (s *Store) Root() string {
	return s.root
}

// resolve maps a key to an absolute path, rejecting traversal attempts.
func (s *Store) resolve(key string) (string, error) {
	if key == "" || strings.Contains(key, "\x00") {
		return "", ErrInvalidKey
	}
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(path, s.root+string(os.PathSeparator)) {
		return "", ErrInvalidKey
	}
	return path, nil
}

// Write stores data under key, creating parent directories as needed.
// The write is atomic: content lands under a temp name and is renamed in.
func (s *Store) Write(key string, data []byte) error {
	start := time.Now()
	path, err := s.resolve(key)
	if err != nil {
		metrics.BlobOperationErrors.WithLabelValues("write").Inc()
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		metrics.BlobOperationErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("failed to create blob dir: %w", err)
	}

	tmp := path + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		metrics.BlobOperationErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logging.Warn("Failed to remove orphaned temp blob %s: %v", tmp, rmErr)
		}
		metrics.BlobOperationErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("failed to finalize blob %s: %w", key, err)
	}

	metrics.BlobOperationDuration.WithLabelValues("write").Observe(time.Since(start).Seconds())
	logging.Debug("Blob written: %s (%d bytes)", key, len(data))
	return nil
}

// Read returns the contents stored under key.
func (s *Store) Read(key string) ([]byte, error) {
	start := time.Now()
	path, err := s.resolve(key)
	if err != nil {
		metrics.BlobOperationErrors.WithLabelValues("read").Inc()
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		metrics.BlobOperationErrors.WithLabelValues("read").Inc()
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}

	metrics.BlobOperationDuration.WithLabelValues("read").Observe(time.Since(start).Seconds())
	return data, nil
}

// Path returns the on-disk path for key without touching the filesystem.
// Useful for http.ServeFile.
func (s *Store) Path(key string) (string, error) {
	return s.resolve(key)
}

// Exists reports whether key holds a blob.
func (s *Store) Exists(key string) bool {
	path, err := s.resolve(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Delete removes the blob under key. A missing blob is an error; callers
// that tolerate absence should use Remove.
func (s *Store) Delete(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		metrics.BlobOperationErrors.WithLabelValues("delete").Inc()
		return err
	}
	if err := os.Remove(path); err != nil {
		metrics.BlobOperationErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

// Remove deletes the blob under key, treating "already missing" as success.
// Document deletion relies on this being idempotent.
func (s *Store) Remove(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		metrics.BlobOperationErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}
