// Package render implements the thumbnail pipeline: format-specific
// renderers (raster resize, PDF first-page rasterization, video first-frame)
// dispatched by MIME category, with a synthetic icon composer as the
// guaranteed fallback. The pipeline never surfaces a failure to callers;
// the worst case is a generic placeholder image.
//
// All thumbnails are encoded as JPEG regardless of input format so storage
// and serving stay uniform.
package render
