package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorEnvelope is the JSON error body.
type ErrorEnvelope struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError responds with the JSON envelope for htmx and JSON callers, plain text otherwise.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	if !IsHTMX(r.Context()) && !strings.Contains(r.Header.Get("Accept"), "application/json") {
		http.Error(w, msg, status)
		return
	}
	WriteJSONError(w, r, status, code, msg)
}

// WriteJSONError always responds with the JSON envelope.
func WriteJSONError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	WriteJSON(w, status, ErrorEnvelope{
		Error:     code,
		Message:   msg,
		Status:    status,
		RequestID: RequestID(r.Context()),
	})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
