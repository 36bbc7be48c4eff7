// Package handlers exposes the coordinator operations over HTTP. The
// fronting layer authenticates requests and supplies the user id in the
// X-User-ID header; these handlers trust it.
package handlers

import (
	"net/http"
	"time"

	"docvault/internal/blob"
	"docvault/internal/docs"
)

// Handlers bundles the HTTP handlers and their dependencies.
type Handlers struct {
	svc     *docs.Service
	blobs   *blob.Store
	started time.Time
}

// New creates the handler set.
func New(svc *docs.Service, blobs *blob.Store) *Handlers {
	return &Handlers{
		svc:     svc,
		blobs:   blobs,
		started: time.Now(),
	}
}

// userID extracts the authenticated user id supplied by the web layer.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}
