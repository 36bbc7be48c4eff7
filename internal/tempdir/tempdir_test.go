package tempdir

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "scopes"))
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	return m
}

func TestScopeLifecycle(t *testing.T) {
	m := newTestManager(t)

	scope, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	info, err := os.Stat(scope.Path())
	if err != nil {
		t.Fatalf("scope dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("scope path is not a directory")
	}
	if !strings.HasPrefix(scope.Path(), m.baseDir) {
		t.Errorf("scope %s not under base dir %s", scope.Path(), m.baseDir)
	}

	path, err := scope.WriteInput("input.pdf", []byte("content"))
	if err != nil {
		t.Fatalf("WriteInput() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read scope input: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("scope input = %q, want %q", data, "content")
	}

	scope.Release()
	if _, err := os.Stat(scope.Path()); !os.IsNotExist(err) {
		t.Errorf("scope dir still exists after Release: %v", err)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	m := newTestManager(t)

	scope, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	scope.Release()
	scope.Release()
	scope.Release()

	if _, err := os.Stat(scope.Path()); !os.IsNotExist(err) {
		t.Errorf("scope dir still exists after repeated Release: %v", err)
	}
}

func TestReleaseAfterExternalRemoval(t *testing.T) {
	m := newTestManager(t)

	scope, err := m.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if err := os.RemoveAll(scope.Path()); err != nil {
		t.Fatalf("failed to remove scope dir: %v", err)
	}

	// RemoveAll on a missing path succeeds, so this must not panic or leak.
	scope.Release()
}

func TestConcurrentScopesAreIsolated(t *testing.T) {
	m := newTestManager(t)

	const n = 20
	paths := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scope, err := m.Acquire()
			if err != nil {
				t.Errorf("Acquire() error: %v", err)
				return
			}
			defer scope.Release()
			paths[i] = scope.Path()
			if _, err := scope.WriteInput("data", []byte{byte(i)}); err != nil {
				t.Errorf("WriteInput() error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, p := range paths {
		if p == "" {
			continue
		}
		if seen[p] {
			t.Errorf("duplicate scope path %s", p)
		}
		seen[p] = true
	}

	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		t.Fatalf("failed to read base dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("base dir has %d leftover entries after release", len(entries))
	}
}
