package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"document id", "/api/documents/abc-123", "/api/documents/{id}"},
		{"thumbnail", "/api/documents/abc-123/thumbnail", "/api/documents/{id}/thumbnail"},
		{"file", "/api/documents/abc-123/file", "/api/documents/{id}/file"},
		{"reorder stays literal", "/api/documents/reorder", "/api/documents/reorder"},
		{"collection", "/api/documents", "/api/documents"},
		{"health untouched", "/healthz", "/healthz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestResponseWriterCapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusOK) // second call must not overwrite
	if _, err := rw.Write([]byte("body")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	if rw.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusTeapot)
	}
	if rw.bytesWritten != 4 {
		t.Errorf("bytesWritten = %d, want 4", rw.bytesWritten)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("recorded status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}

func TestResponseWriterImplicitStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	if _, err := rw.Write([]byte("hello")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want implicit 200", rw.statusCode)
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		if _, err := w.Write([]byte("ok")); err != nil {
			t.Errorf("Write() error: %v", err)
		}
	})

	handler := Logger(DefaultLoggingConfig())(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/documents", nil))

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "ok")
	}
}

func TestShouldSkip(t *testing.T) {
	quiet := LoggingConfig{SkipPaths: []string{"/metrics"}, LogHealthChecks: false}

	tests := []struct {
		path string
		want bool
	}{
		{"/healthz", true},
		{"/metrics", true},
		{"/api/documents", false},
	}
	for _, tt := range tests {
		if got := shouldSkip(tt.path, quiet); got != tt.want {
			t.Errorf("shouldSkip(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	verbose := DefaultLoggingConfig()
	if shouldSkip("/healthz", verbose) {
		t.Error("default config should log health checks")
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "/api/documents", "/api/documents"},
		{"newline", "/a\nb", "/a b"},
		{"carriage return", "/a\rb", "/a b"},
		{"control chars dropped", "/a\x00\x1bb", "/ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.in); got != tt.want {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMetricsSkipPaths(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Metrics(DefaultMetricsConfig())(inner)

	for _, path := range []string{"/metrics", "/healthz", "/api/documents/some-id"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status for %s = %d, want 200", path, rec.Code)
		}
	}
}
