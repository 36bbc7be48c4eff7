package startup

import (
	"path/filepath"
	"testing"
	"time"
)

func setConfigEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("DATABASE_DIR", filepath.Join(dir, "database"))
	t.Setenv("TEMP_DIR", filepath.Join(dir, "tmp"))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	setConfigEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("PDF_TOOL", "")
	t.Setenv("PDF_TIMEOUT", "")
	t.Setenv("MAX_UPLOAD_SIZE", "")
	t.Setenv("THUMB_WIDTH", "")
	t.Setenv("THUMB_HEIGHT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.PDFTool != "pdftoppm" {
		t.Errorf("PDFTool = %q, want pdftoppm", cfg.PDFTool)
	}
	if cfg.PDFTimeout != 15*time.Second {
		t.Errorf("PDFTimeout = %v, want 15s", cfg.PDFTimeout)
	}
	if cfg.MaxUploadSize != 100<<20 {
		t.Errorf("MaxUploadSize = %d, want %d", cfg.MaxUploadSize, 100<<20)
	}
	if cfg.ThumbWidth != 400 || cfg.ThumbHeight != 400 {
		t.Errorf("thumb bounds = %dx%d, want 400x400", cfg.ThumbWidth, cfg.ThumbHeight)
	}
	if cfg.DatabasePath != filepath.Join(cfg.DatabaseDir, "docvault.db") {
		t.Errorf("DatabasePath = %q, want under DatabaseDir", cfg.DatabasePath)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setConfigEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("PDF_TOOL", "mutool")
	t.Setenv("PDF_TIMEOUT", "3s")
	t.Setenv("THUMB_WIDTH", "256")
	t.Setenv("THUMB_HEIGHT", "192")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.PDFTool != "mutool" {
		t.Errorf("PDFTool = %q, want mutool", cfg.PDFTool)
	}
	if cfg.PDFTimeout != 3*time.Second {
		t.Errorf("PDFTimeout = %v, want 3s", cfg.PDFTimeout)
	}
	if cfg.ThumbWidth != 256 || cfg.ThumbHeight != 192 {
		t.Errorf("thumb bounds = %dx%d, want 256x192", cfg.ThumbWidth, cfg.ThumbHeight)
	}
	if cfg.MetricsEnabled {
		t.Error("MetricsEnabled = true, want false")
	}
}

func TestLoadConfigBadDuration(t *testing.T) {
	setConfigEnv(t)
	t.Setenv("PDF_TIMEOUT", "soon")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.PDFTimeout != 15*time.Second {
		t.Errorf("PDFTimeout = %v, want default 15s for bad input", cfg.PDFTimeout)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	t.Setenv("TEST_BOOL", "yes")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty-two")

	if got := getEnv("TEST_STR", "fallback"); got != "value" {
		t.Errorf("getEnv = %q, want value", got)
	}
	if got := getEnv("TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnv = %q, want fallback", got)
	}
	if !getEnvBool("TEST_BOOL", false) {
		t.Error("getEnvBool = false, want true for yes")
	}
	if got := getEnvInt("TEST_INT", 7); got != 42 {
		t.Errorf("getEnvInt = %d, want 42", got)
	}
	if got := getEnvInt("TEST_BAD_INT", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want fallback 7", got)
	}
	if got := getEnvInt64("TEST_INT", 7); got != 42 {
		t.Errorf("getEnvInt64 = %d, want 42", got)
	}
}
