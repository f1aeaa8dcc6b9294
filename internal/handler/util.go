package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docuchat-ai/document-platform/internal/apperr"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeServiceError maps a pipeline error to the proper response: typed
// client errors keep their status and reason, everything else is a 500 with
// the underlying error attached.
func writeServiceError(w http.ResponseWriter, err error) {
	if ce, ok := apperr.AsClientError(err); ok {
		writeError(w, ce.Status, ce.Reason)
		return
	}
	if errors.Is(err, apperr.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":  "internal server error",
		"detail": err.Error(),
	})
}
