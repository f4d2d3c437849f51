package handler

import (
	"encoding/json"
	"net/http"

	"outlook-email-extractor/internal/logging"
)

// respondJSON writes payload as a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Log.WithError(err).Warn("failed to encode response")
	}
}

// respondError writes an {"error": message} response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
