// Package startup owns configuration loading and process boot logging.
package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"docvault/internal/logging"
)

// Build-time variables (injected via -ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information.
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration.
type Config struct {
	DataDir     string
	DatabaseDir string
	TempDir     string
	Port        string
	MetricsPort string

	MaxUploadSize int64
	ThumbWidth    int
	ThumbHeight   int

	PDFTool        string
	PDFTimeout     time.Duration
	RenderWorkers  int
	MetricsEnabled bool

	LogHealthChecks bool

	// Derived paths
	DatabasePath string
}

// LoadConfig loads and validates configuration from environment variables.
func LoadConfig() (*Config, error) {
	printBanner()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	cfg := &Config{
		DataDir:         getEnv("DATA_DIR", "/data"),
		DatabaseDir:     getEnv("DATABASE_DIR", "/database"),
		TempDir:         getEnv("TEMP_DIR", ""),
		Port:            getEnv("PORT", "8080"),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		MaxUploadSize:   getEnvInt64("MAX_UPLOAD_SIZE", 100<<20),
		ThumbWidth:      getEnvInt("THUMB_WIDTH", 400),
		ThumbHeight:     getEnvInt("THUMB_HEIGHT", 400),
		PDFTool:         getEnv("PDF_TOOL", "pdftoppm"),
		RenderWorkers:   getEnvInt("RENDER_WORKERS", 0),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", false),
	}

	pdfTimeoutStr := getEnv("PDF_TIMEOUT", "15s")
	pdfTimeout, err := time.ParseDuration(pdfTimeoutStr)
	if err != nil {
		logging.Warn("  Invalid PDF_TIMEOUT %q, using default: 15s", pdfTimeoutStr)
		pdfTimeout = 15 * time.Second
	}
	cfg.PDFTimeout = pdfTimeout

	logging.Info("  DATA_DIR:          %s", cfg.DataDir)
	logging.Info("  DATABASE_DIR:      %s", cfg.DatabaseDir)
	logging.Info("  PORT:              %s", cfg.Port)
	logging.Info("  METRICS_PORT:      %s", cfg.MetricsPort)
	logging.Info("  METRICS_ENABLED:   %v", cfg.MetricsEnabled)
	logging.Info("  MAX_UPLOAD_SIZE:   %d", cfg.MaxUploadSize)
	logging.Info("  THUMB_BOUNDS:      %dx%d", cfg.ThumbWidth, cfg.ThumbHeight)
	logging.Info("  PDF_TOOL:          %s", cfg.PDFTool)
	logging.Info("  PDF_TIMEOUT:       %s", cfg.PDFTimeout)
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	for _, dir := range []*string{&cfg.DataDir, &cfg.DatabaseDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve directory %s: %w", *dir, err)
		}
		*dir = abs
		if err := os.MkdirAll(abs, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", abs, err)
		}
	}

	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "docvault-render")
	}

	cfg.DatabasePath = filepath.Join(cfg.DatabaseDir, "docvault.db")
	return cfg, nil
}

func printBanner() {
	logging.Printf("docvault %s (%s) %s/%s", Version, Commit, runtime.GOOS, runtime.GOARCH)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.ToLower(os.Getenv(key))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logging.Warn("  Invalid %s=%q, using default %d", key, v, fallback)
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		logging.Warn("  Invalid %s=%q, using default %d", key, v, fallback)
	}
	return fallback
}
