package render

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"

	"docvault/internal/logging"

	// Image format decoders
	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support
)

// jpegQuality is the encode quality for all generated thumbnails.
const jpegQuality = 85

// RasterRenderer produces thumbnails from image uploads by decoding,
// fitting within the target bounds, and re-encoding as JPEG.
type RasterRenderer struct{}

// Name implements Renderer.
func (r *RasterRenderer) Name() string { return "raster" }

// Render implements Renderer. It never upscales: an image already within
// the target bounds is re-encoded at its original size.
func (r *RasterRenderer) Render(_ context.Context, req Request) ([]byte, bool) {
	// Prefer libvips when initialized: it shrinks at decode time, which
	// matters for large camera originals.
	if IsVipsAvailable() {
		if data, err := renderWithVips(req.Data, req.Width, req.Height); err == nil {
			return data, true
		} else {
			logging.Debug("vips decode failed, falling back to native decode: %v", err)
		}
	}

	img, err := imaging.Decode(bytes.NewReader(req.Data), imaging.AutoOrientation(true))
	if err != nil {
		logging.Debug("raster decode failed (%s): %v", req.MimeType, err)
		return nil, false
	}

	data, err := fitAndEncode(img, req.Width, req.Height)
	if err != nil {
		logging.Debug("raster encode failed: %v", err)
		return nil, false
	}
	return data, true
}

// fitAndEncode scales img down to fit within w×h (preserving aspect ratio,
// never upscaling) and encodes it as JPEG.
func fitAndEncode(img image.Image, w, h int) ([]byte, error) {
	thumb := imaging.Fit(img, w, h, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
