package render

import (
	"context"
	"time"

	"docvault/internal/doctypes"
	"docvault/internal/logging"
	"docvault/internal/metrics"
	"docvault/internal/tempdir"
)

// ThumbnailMimeType is the encoding of every thumbnail the pipeline
// produces, regardless of input format.
const ThumbnailMimeType = "image/jpeg"

// Request is one render attempt: input bytes, declared MIME type, and
// target bounds. It is owned by the pipeline for the duration of one call
// and never shared across attempts.
type Request struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// Renderer is a single format strategy. Implementations map every internal
// failure to ok=false; nothing may escape this boundary.
type Renderer interface {
	Render(ctx context.Context, req Request) ([]byte, bool)
	Name() string
}

// Result is the pipeline output. Data is always a well-formed JPEG.
type Result struct {
	Data     []byte
	MimeType string
	// FellBack is true when the primary strategy failed and the synthetic
	// icon was used instead.
	FellBack bool
}

// Config configures a Pipeline.
type Config struct {
	Width      int
	Height     int
	PDFTool    string
	PDFTimeout time.Duration
}

// Pipeline dispatches render requests to format renderers and guarantees a
// usable thumbnail via the icon composer fallback.
type Pipeline struct {
	raster Renderer
	pdf    Renderer
	video  Renderer
	icon   *IconComposer
	width  int
	height int
}

// NewPipeline builds the dispatcher with its four strategies. Temp scopes
// for external-tool renders come from the given manager.
func NewPipeline(scopes *tempdir.Manager, cfg Config) (*Pipeline, error) {
	icon, err := NewIconComposer()
	if err != nil {
		return nil, err
	}

	if cfg.Width <= 0 {
		cfg.Width = 400
	}
	if cfg.Height <= 0 {
		cfg.Height = 400
	}

	return &Pipeline{
		raster: &RasterRenderer{},
		pdf:    NewPDFRenderer(scopes, cfg.PDFTool, cfg.PDFTimeout),
		video:  &VideoRenderer{},
		icon:   icon,
		width:  cfg.Width,
		height: cfg.Height,
	}, nil
}

// Render produces a thumbnail for the given payload. It never returns an
// error: any strategy failure resolves to the synthetic icon for the
// payload's category.
func (p *Pipeline) Render(ctx context.Context, data []byte, mimeType string) Result {
	req := Request{Data: data, MimeType: mimeType, Width: p.width, Height: p.height}
	category := doctypes.RenderCategoryFor(mimeType)

	var primary Renderer
	switch category {
	case doctypes.RenderImage:
		primary = p.raster
	case doctypes.RenderPDF:
		primary = p.pdf
	case doctypes.RenderVideo:
		primary = p.video
	}

	if primary != nil {
		start := time.Now()
		out, ok := primary.Render(ctx, req)
		metrics.RenderDuration.WithLabelValues(primary.Name()).Observe(time.Since(start).Seconds())

		if ok {
			metrics.RendersTotal.WithLabelValues(primary.Name(), "ok").Inc()
			return Result{Data: out, MimeType: ThumbnailMimeType}
		}

		metrics.RendersTotal.WithLabelValues(primary.Name(), "failed").Inc()
		metrics.RenderFallbacks.WithLabelValues(string(category)).Inc()
		logging.Info("Renderer %s failed for %s, using synthetic icon", primary.Name(), mimeType)
	}

	// The composer has no failure mode, so this path always yields a
	// well-formed thumbnail.
	start := time.Now()
	out := p.icon.Compose(category, req)
	metrics.RenderDuration.WithLabelValues("icon").Observe(time.Since(start).Seconds())
	metrics.RendersTotal.WithLabelValues("icon", "ok").Inc()

	return Result{Data: out, MimeType: ThumbnailMimeType, FellBack: primary != nil}
}
