package handlers

import (
	"io"
	"net/http"

	"docvault/internal/logging"

	"github.com/gorilla/mux"
)

// maxThumbnailBody caps the request body for thumbnail submissions; the
// coordinator enforces its own tighter limit on the decoded payload.
const maxThumbnailBody = 8 << 20

// GetThumbnail serves a document's thumbnail bytes.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeJSONError(w, "missing user", http.StatusUnauthorized)
		return
	}

	key, mime, err := h.svc.ThumbnailPath(r.Context(), uid, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := h.blobs.Read(key)
	if err != nil {
		logging.Error("failed to read thumbnail blob %s: %v", key, err)
		writeJSONError(w, "thumbnail unavailable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := w.Write(data); err != nil {
		logging.Debug("failed to write thumbnail response: %v", err)
	}
}

// SubmitThumbnail is the quality-upgrade channel: a client posts a
// higher-fidelity rendering which replaces the server-generated one.
func (h *Handlers) SubmitThumbnail(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeJSONError(w, "missing user", http.StatusUnauthorized)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxThumbnailBody+1))
	if err != nil {
		writeJSONError(w, "failed to read thumbnail payload", http.StatusBadRequest)
		return
	}
	if len(data) > maxThumbnailBody {
		writeJSONError(w, "thumbnail payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := h.svc.SubmitThumbnail(r.Context(), uid, mux.Vars(r)["id"], data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, doc)
}

// GetFile serves the document's original bytes.
func (h *Handlers) GetFile(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeJSONError(w, "missing user", http.StatusUnauthorized)
		return
	}

	doc, err := h.svc.Get(r.Context(), uid, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	path, err := h.blobs.Path(doc.FilePath)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", `inline; filename="`+doc.FileName+`"`)
	http.ServeFile(w, r, path)
}
