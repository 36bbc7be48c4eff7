package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"docvault/internal/docs"
	"docvault/internal/logging"
)

// writeJSON encodes v as JSON and writes it to the response writer. Any
// encoding or write errors are logged since we typically cannot recover
// from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Error("failed to encode JSON error response: %v", err)
	}
}

// writeServiceError maps coordinator errors onto HTTP statuses following
// the propagation policy: validation 400, not-found 404, everything else a
// logged 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case docs.IsValidation(err):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, docs.ErrNotFound):
		writeJSONError(w, "document not found", http.StatusNotFound)
	default:
		logging.Error("request failed: %v", err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
	}
}
