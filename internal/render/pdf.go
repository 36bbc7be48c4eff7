package render

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"docvault/internal/logging"
	"docvault/internal/tempdir"

	"github.com/disintegration/imaging"
)

const (
	// pdfRenderDPI is high enough for crisp text once fitted to thumbnail
	// scale.
	pdfRenderDPI = "150"

	// DefaultPDFTimeout bounds the external rasterizer so a hung process
	// cannot stall the pipeline.
	DefaultPDFTimeout = 15 * time.Second
)

// PDFRenderer rasterizes the first page of a PDF with an external tool
// (pdftoppm from poppler-utils) inside a fresh temp scope.
type PDFRenderer struct {
	scopes  *tempdir.Manager
	tool    string
	timeout time.Duration
}

// NewPDFRenderer returns a renderer invoking the given rasterizer binary.
// Empty tool and zero timeout select pdftoppm and DefaultPDFTimeout.
func NewPDFRenderer(scopes *tempdir.Manager, tool string, timeout time.Duration) *PDFRenderer {
	if tool == "" {
		tool = "pdftoppm"
	}
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}
	return &PDFRenderer{scopes: scopes, tool: tool, timeout: timeout}
}

// Name implements Renderer.
func (r *PDFRenderer) Name() string { return "pdf" }

// Render implements Renderer. A missing binary, corrupt PDF, or timeout is
// a renderer failure, never a crash; the scope is released on every path.
func (r *PDFRenderer) Render(ctx context.Context, req Request) ([]byte, bool) {
	if _, err := exec.LookPath(r.tool); err != nil {
		logging.Debug("PDF rasterizer %q not found: %v", r.tool, err)
		return nil, false
	}

	scope, err := r.scopes.Acquire()
	if err != nil {
		logging.Warn("Failed to acquire render scope for PDF: %v", err)
		return nil, false
	}
	defer scope.Release()

	inputPath, err := scope.WriteInput("input.pdf", req.Data)
	if err != nil {
		logging.Warn("Failed to stage PDF input: %v", err)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// -singlefile writes exactly one page to <outBase>.jpg.
	outBase := scope.Path() + string(os.PathSeparator) + "page"
	cmd := exec.CommandContext(ctx, r.tool,
		"-jpeg",
		"-r", pdfRenderDPI,
		"-f", "1",
		"-l", "1",
		"-singlefile",
		inputPath,
		outBase,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			logging.Warn("PDF rasterization timed out after %v", r.timeout)
		} else {
			logging.Debug("PDF rasterization failed: %v, stderr: %s", err, stderr.String())
		}
		return nil, false
	}

	raster, err := os.ReadFile(outBase + ".jpg")
	if err != nil {
		logging.Debug("PDF rasterizer produced no output: %v", err)
		return nil, false
	}

	img, err := imaging.Decode(bytes.NewReader(raster))
	if err != nil {
		logging.Debug("Failed to decode rasterized PDF page: %v", err)
		return nil, false
	}

	data, err := fitAndEncode(img, req.Width, req.Height)
	if err != nil {
		logging.Debug("Failed to encode PDF thumbnail: %v", err)
		return nil, false
	}
	return data, true
}
