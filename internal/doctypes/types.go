// Package doctypes classifies uploaded files by MIME type and extension.
// The render category drives thumbnail strategy selection; the record
// category is what gets persisted on the document row.
package doctypes

import (
	"mime"
	"path/filepath"
	"strings"
)

// RenderCategory selects a thumbnail rendering strategy.
type RenderCategory string

const (
	// RenderImage is handled by the raster resize renderer.
	RenderImage RenderCategory = "image"
	// RenderPDF is handled by the external first-page rasterizer.
	RenderPDF RenderCategory = "pdf"
	// RenderVideo is handled by the first-frame renderer.
	RenderVideo RenderCategory = "video"
	// RenderOther goes straight to the synthetic icon composer.
	RenderOther RenderCategory = "other"
)

// DocCategory is the coarse type stored on the document record.
type DocCategory string

const (
	// DocImage is an image document.
	DocImage DocCategory = "image"
	// DocPDF is a PDF document.
	DocPDF DocCategory = "pdf"
	// DocText covers word-processing and plain-text documents.
	DocText DocCategory = "doc"
	// DocOther is everything else.
	DocOther DocCategory = "other"
)

// rasterMimes are image types the raster renderer can decode natively.
var rasterMimes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

var textDocMimes = map[string]bool{
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.oasis.opendocument.text":                                 true,
	"application/rtf": true,
}

// RenderCategoryFor maps a declared MIME type to a rendering strategy.
// Unknown image subtypes still classify as image so the raster renderer
// gets first crack; its failure falls back to the icon composer anyway.
func RenderCategoryFor(mimeType string) RenderCategory {
	mt := normalize(mimeType)

	switch {
	case mt == "application/pdf":
		return RenderPDF
	case strings.HasPrefix(mt, "image/"):
		return RenderImage
	case strings.HasPrefix(mt, "video/"):
		return RenderVideo
	default:
		return RenderOther
	}
}

// DocCategoryFor maps a declared MIME type to the persisted record category.
func DocCategoryFor(mimeType string) DocCategory {
	mt := normalize(mimeType)

	switch {
	case mt == "application/pdf":
		return DocPDF
	case strings.HasPrefix(mt, "image/"):
		return DocImage
	case strings.HasPrefix(mt, "text/") || textDocMimes[mt]:
		return DocText
	default:
		return DocOther
	}
}

// IsNativeImage reports whether the raster renderer can decode the type
// without an external tool.
func IsNativeImage(mimeType string) bool {
	return rasterMimes[normalize(mimeType)]
}

// IsText reports whether the payload is worth sampling for a text excerpt
// on the synthetic placeholder.
func IsText(mimeType string) bool {
	return strings.HasPrefix(normalize(mimeType), "text/")
}

// DetectMime resolves an empty or generic declared type from the filename
// extension. The declared type wins when present.
func DetectMime(declared, filename string) string {
	mt := normalize(declared)
	if mt != "" && mt != "application/octet-stream" {
		return mt
	}

	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return normalize(byExt)
	}
	if mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// normalize strips parameters and lowercases a MIME type
// ("Text/Plain; charset=utf-8" -> "text/plain").
func normalize(mimeType string) string {
	mt := strings.TrimSpace(strings.ToLower(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}
