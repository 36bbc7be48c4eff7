package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"docvault/internal/tempdir"
)

func newTestPipeline(t *testing.T, pdfTool string) (*Pipeline, string) {
	t.Helper()

	scopeDir := filepath.Join(t.TempDir(), "scopes")
	scopes, err := tempdir.NewManager(scopeDir)
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	p, err := NewPipeline(scopes, Config{Width: 200, Height: 200, PDFTool: pdfTool})
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}
	return p, scopeDir
}

func assertNoLeakedScopes(t *testing.T, scopeDir string) {
	t.Helper()
	entries, err := os.ReadDir(scopeDir)
	if err != nil {
		t.Fatalf("failed to read scope dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("scope dir has %d leftover entries", len(entries))
	}
}

func TestPipelineRendersImage(t *testing.T) {
	p, _ := newTestPipeline(t, "")

	res := p.Render(context.Background(), encodeJPEG(t, 800, 600), "image/jpeg")

	if res.FellBack {
		t.Error("FellBack = true for a valid image")
	}
	if res.MimeType != ThumbnailMimeType {
		t.Errorf("MimeType = %q, want %q", res.MimeType, ThumbnailMimeType)
	}
	w, h := decodeDims(t, res.Data)
	if w > 200 || h > 200 {
		t.Errorf("thumbnail = %dx%d, exceeds 200x200 bounds", w, h)
	}
}

func TestPipelineUnknownTypeGetsIconDirectly(t *testing.T) {
	p, _ := newTestPipeline(t, "")

	res := p.Render(context.Background(), []byte("PK\x03\x04archive"), "application/zip")

	// No strategy was attempted, so reaching the composer is not a
	// fallback.
	if res.FellBack {
		t.Error("FellBack = true for a type with no renderer")
	}
	decodeDims(t, res.Data)
}

func TestPipelineCorruptImageFallsBack(t *testing.T) {
	p, _ := newTestPipeline(t, "")

	res := p.Render(context.Background(), []byte("not pixels at all"), "image/jpeg")

	if !res.FellBack {
		t.Error("FellBack = false for undecodable image data")
	}
	decodeDims(t, res.Data)
}

func TestPipelineMissingPDFToolFallsBack(t *testing.T) {
	p, scopeDir := newTestPipeline(t, "definitely-not-an-installed-rasterizer")

	res := p.Render(context.Background(), []byte("%PDF-1.4 minimal"), "application/pdf")

	if !res.FellBack {
		t.Error("FellBack = false when the rasterizer binary is missing")
	}
	if res.MimeType != ThumbnailMimeType {
		t.Errorf("MimeType = %q, want %q", res.MimeType, ThumbnailMimeType)
	}
	decodeDims(t, res.Data)
	assertNoLeakedScopes(t, scopeDir)
}

func TestPipelineFailedPDFToolCleansScope(t *testing.T) {
	// "false" exists everywhere and exits nonzero, so the renderer
	// acquires a scope, runs the tool, fails, and must release the scope.
	p, scopeDir := newTestPipeline(t, "false")

	res := p.Render(context.Background(), []byte("%PDF-1.4 minimal"), "application/pdf")

	if !res.FellBack {
		t.Error("FellBack = false when the rasterizer exits nonzero")
	}
	decodeDims(t, res.Data)
	assertNoLeakedScopes(t, scopeDir)
}

func TestPipelineVideoFallsBack(t *testing.T) {
	p, _ := newTestPipeline(t, "")

	res := p.Render(context.Background(), []byte("ftypmp42"), "video/mp4")

	if !res.FellBack {
		t.Error("FellBack = false for video, which has no frame extractor yet")
	}
	decodeDims(t, res.Data)
}

func TestPipelineDefaultBounds(t *testing.T) {
	scopes, err := tempdir.NewManager(filepath.Join(t.TempDir(), "scopes"))
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	p, err := NewPipeline(scopes, Config{})
	if err != nil {
		t.Fatalf("NewPipeline() error: %v", err)
	}

	res := p.Render(context.Background(), encodeJPEG(t, 1200, 1200), "image/jpeg")
	w, h := decodeDims(t, res.Data)
	if w != 400 || h != 400 {
		t.Errorf("thumbnail = %dx%d, want default 400x400 bounds", w, h)
	}
}
