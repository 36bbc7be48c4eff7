// Package tempdir provides isolated, auto-cleaned working directories for
// single render attempts. Each scope gets a unique directory so concurrent
// renders never share on-disk state, and Release is safe to defer on every
// exit path.
package tempdir

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"docvault/internal/logging"
	"docvault/internal/metrics"

	"github.com/google/uuid"
)

// Scope is one isolated working directory. It must not outlive the render
// attempt that acquired it.
type Scope struct {
	dir     string
	release sync.Once
}

// Manager creates scopes under a single base directory it owns.
type Manager struct {
	baseDir string
}

// NewManager ensures baseDir exists and returns a manager rooted there.
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scope base dir %s: %w", baseDir, err)
	}
	return &Manager{baseDir: baseDir}, nil
}

// Acquire creates a uniquely named scope directory. Failure here is a hard
// error: the caller aborts the render attempt and falls back.
func (m *Manager) Acquire() (*Scope, error) {
	dir := filepath.Join(m.baseDir, uuid.NewString())
	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create render scope: %w", err)
	}

	metrics.TempScopesActive.Inc()
	logging.Debug("Acquired render scope: %s", dir)
	return &Scope{dir: dir}, nil
}

// Path returns the scope's backing directory.
func (s *Scope) Path() string {
	return s.dir
}

// WriteInput writes data to a file inside the scope and returns its path.
func (s *Scope) WriteInput(name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write scope input: %w", err)
	}
	return path, nil
}

// Release removes the scope directory and all contents. It is idempotent,
// so callers defer it unconditionally.
func (s *Scope) Release() {
	s.release.Do(func() {
		metrics.TempScopesActive.Dec()
		if err := os.RemoveAll(s.dir); err != nil {
			// The pipeline keeps going; a leaked dir is an operational
			// concern, not a render failure.
			metrics.TempScopeLeaks.Inc()
			logging.Warn("Failed to remove render scope %s: %v", s.dir, err)
			return
		}
		logging.Debug("Released render scope: %s", s.dir)
	})
}
