package render

import (
	"context"

	"docvault/internal/logging"
)

// VideoRenderer is the first-frame capture slot in the pipeline. True frame
// extraction needs a media toolchain the minimal deployment does not carry,
// so the default implementation always reports failure and the dispatcher
// falls back to the synthetic media icon. A real extractor can be swapped
// in behind the same Renderer contract.
type VideoRenderer struct{}

// Name implements Renderer.
func (r *VideoRenderer) Name() string { return "video" }

// Render implements Renderer.
func (r *VideoRenderer) Render(_ context.Context, req Request) ([]byte, bool) {
	logging.Debug("video first-frame capture unavailable (%s), using fallback", req.MimeType)
	return nil, false
}
