package middleware

import (
	"encoding/json"
	"net/http"
)

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteDetail writes the error body shape every endpoint uses: {"detail": "..."}.
func WriteDetail(w http.ResponseWriter, status int, detail string) {
	_ = WriteJSON(w, status, map[string]string{"detail": detail})
}
