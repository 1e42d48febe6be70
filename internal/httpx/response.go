// Package httpx holds the response envelope shared by every endpoint.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error envelope: a stable machine-readable code plus
// optional field-level details (validation.Violations for 400s).
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload with the given status. The payload is marshalled before
// any byte hits the wire so a failing value never produces truncated JSON.
func JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"encode_failed"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// JSONError writes the error envelope. code should be a short snake_case
// identifier ("validation_failed", "not_found", ...), never prose.
func JSONError(w http.ResponseWriter, status int, code string, details any) {
	JSON(w, status, ErrorResponse{Error: code, Details: details})
}
