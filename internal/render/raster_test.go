package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// createTestImage builds a w×h gradient so encoders have real content to
// work with.
func createTestImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(w, h), nil); err != nil {
		t.Fatalf("failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(w, h)); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

// decodeDims decodes thumbnail output and returns its dimensions.
func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a decodable image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("output format = %q, want jpeg", format)
	}
	return cfg.Width, cfg.Height
}

func TestRasterDownscalesPreservingAspect(t *testing.T) {
	r := &RasterRenderer{}

	out, ok := r.Render(context.Background(), Request{
		Data:     encodeJPEG(t, 800, 600),
		MimeType: "image/jpeg",
		Width:    200,
		Height:   200,
	})
	if !ok {
		t.Fatal("Render() failed for valid JPEG")
	}

	w, h := decodeDims(t, out)
	if w != 200 || h != 150 {
		t.Errorf("thumbnail = %dx%d, want 200x150", w, h)
	}
}

func TestRasterNeverUpscales(t *testing.T) {
	r := &RasterRenderer{}

	out, ok := r.Render(context.Background(), Request{
		Data:     encodeJPEG(t, 50, 40),
		MimeType: "image/jpeg",
		Width:    400,
		Height:   400,
	})
	if !ok {
		t.Fatal("Render() failed for valid JPEG")
	}

	w, h := decodeDims(t, out)
	if w != 50 || h != 40 {
		t.Errorf("thumbnail = %dx%d, want original 50x40", w, h)
	}
}

func TestRasterHandlesPNG(t *testing.T) {
	r := &RasterRenderer{}

	out, ok := r.Render(context.Background(), Request{
		Data:     encodePNG(t, 300, 300),
		MimeType: "image/png",
		Width:    100,
		Height:   100,
	})
	if !ok {
		t.Fatal("Render() failed for valid PNG")
	}

	w, h := decodeDims(t, out)
	if w != 100 || h != 100 {
		t.Errorf("thumbnail = %dx%d, want 100x100", w, h)
	}
}

func TestRasterRejectsGarbage(t *testing.T) {
	r := &RasterRenderer{}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not an image", []byte("definitely not pixels")},
		{"truncated jpeg", encodeJPEG(t, 100, 100)[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out, ok := r.Render(context.Background(), Request{
				Data: tt.data, MimeType: "image/jpeg", Width: 100, Height: 100,
			}); ok {
				t.Errorf("Render() succeeded with %d output bytes, want failure", len(out))
			}
		})
	}
}
