package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"docvault/internal/database"
	"docvault/internal/docs"
	"docvault/internal/logging"

	"github.com/gorilla/mux"
)

// maxMultipartMemory bounds how much of a multipart upload stays in memory
// before spooling to disk.
const maxMultipartMemory = 32 << 20

// ListDocuments returns all of the caller's documents, pinned first.
func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeJSONError(w, "missing user", http.StatusUnauthorized)
		return
	}

	docList, err := h.svc.List(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if docList == nil {
		docList = []database.Document{}
	}

	writeJSON(w, docList)
}

// UploadDocument accepts a multipart upload under the "file" field and
// returns the created document. The response does not wait for thumbnail
// generation; the thumbnail status starts as pending.
func (h *Handlers) UploadDocument(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeJSONError(w, "missing user", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeJSONError(w, "malformed multipart request", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close upload stream: %v", err)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	doc, err := h.svc.Upload(r.Context(), uid, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, doc)
}

// GetDocument returns one document's metadata.
func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, doc)
}

type updateRequest struct {
	Name      *string   `json:"name"`
	Tags      *[]string `json:"tags"`
	Pinned    *bool     `json:"pinned"`
	SortOrder *int      `json:"sortOrder"`
}

// UpdateDocument applies metadata-only changes (name, tags, pinned flag,
// sort position) and returns the fresh record.
func (h *Handlers) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeJSONError(w, "missing user", http.StatusUnauthorized)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "malformed request body", http.StatusBadRequest)
		return
	}

	doc, err := h.svc.Update(r.Context(), uid, mux.Vars(r)["id"], docs.UpdateRequest{
		Name:      req.Name,
		Tags:      req.Tags,
		Pinned:    req.Pinned,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, doc)
}

// DeleteDocument removes a document and its storage artifacts.
func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeJSONError(w, "missing user", http.StatusUnauthorized)
		return
	}

	if err := h.svc.Delete(r.Context(), uid, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

// ReorderDocuments assigns the caller's explicit document order.
func (h *Handlers) ReorderDocuments(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeJSONError(w, "missing user", http.StatusUnauthorized)
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "malformed request body", http.StatusBadRequest)
		return
	}

	if err := h.svc.Reorder(r.Context(), uid, req.IDs); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
