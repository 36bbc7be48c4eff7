package doctypes

import "testing"

func TestRenderCategoryFor(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		want     RenderCategory
	}{
		{"jpeg", "image/jpeg", RenderImage},
		{"png", "image/png", RenderImage},
		{"unknown image subtype", "image/x-canon-cr2", RenderImage},
		{"pdf", "application/pdf", RenderPDF},
		{"pdf with params", "application/pdf; charset=binary", RenderPDF},
		{"video", "video/mp4", RenderVideo},
		{"plain text", "text/plain", RenderOther},
		{"zip", "application/zip", RenderOther},
		{"empty", "", RenderOther},
		{"mixed case", "IMAGE/JPEG", RenderImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderCategoryFor(tt.mimeType); got != tt.want {
				t.Errorf("RenderCategoryFor(%q) = %q, want %q", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestDocCategoryFor(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		want     DocCategory
	}{
		{"jpeg", "image/jpeg", DocImage},
		{"pdf", "application/pdf", DocPDF},
		{"plain text", "text/plain", DocText},
		{"markdown", "text/markdown", DocText},
		{"docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", DocText},
		{"legacy doc", "application/msword", DocText},
		{"zip", "application/zip", DocOther},
		{"video", "video/mp4", DocOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DocCategoryFor(tt.mimeType); got != tt.want {
				t.Errorf("DocCategoryFor(%q) = %q, want %q", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestDetectMime(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		filename string
		want     string
	}{
		{"declared wins", "image/png", "photo.jpg", "image/png"},
		{"declared normalized", "Text/Plain; charset=utf-8", "notes.txt", "text/plain"},
		{"empty falls back to extension", "", "report.pdf", "application/pdf"},
		{"octet-stream falls back to extension", "application/octet-stream", "photo.jpg", "image/jpeg"},
		{"no extension no declared", "", "README", "application/octet-stream"},
		{"octet-stream kept when extension unknown", "application/octet-stream", "data.qqq", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMime(tt.declared, tt.filename); got != tt.want {
				t.Errorf("DetectMime(%q, %q) = %q, want %q", tt.declared, tt.filename, got, tt.want)
			}
		})
	}
}

func TestIsNativeImage(t *testing.T) {
	for _, mt := range []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff"} {
		if !IsNativeImage(mt) {
			t.Errorf("IsNativeImage(%q) = false, want true", mt)
		}
	}
	for _, mt := range []string{"image/x-canon-cr2", "application/pdf", "text/plain", ""} {
		if IsNativeImage(mt) {
			t.Errorf("IsNativeImage(%q) = true, want false", mt)
		}
	}
}

func TestIsText(t *testing.T) {
	if !IsText("text/plain") || !IsText("text/csv; header=present") {
		t.Error("expected text/* types to report as text")
	}
	if IsText("application/pdf") || IsText("") {
		t.Error("expected non-text types to report as not text")
	}
}
