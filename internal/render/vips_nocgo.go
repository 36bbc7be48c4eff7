//go:build !cgo

package render

import "errors"

// govips requires cgo; in a CGO_ENABLED=0 build libvips is never
// available and the raster renderer falls back to native decoding.

var errVipsUnavailable = errors.New("libvips support requires cgo (built with CGO_ENABLED=0)")

// InitVips reports that libvips is unavailable in cgo-less builds.
// The raster renderer works without it, just slower on large originals.
func InitVips() error {
	return errVipsUnavailable
}

// ShutdownVips is a no-op in cgo-less builds.
func ShutdownVips() {}

// IsVipsAvailable returns whether libvips is initialized and available.
func IsVipsAvailable() bool {
	return false
}

// renderWithVips always fails in cgo-less builds; callers only reach it
// when IsVipsAvailable reports true.
func renderWithVips(data []byte, targetWidth, targetHeight int) ([]byte, error) {
	return nil, errVipsUnavailable
}
