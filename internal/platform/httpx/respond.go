// Package httpx provides HTTP response utilities for the JSON API.
package httpx

import (
	"encoding/json"
	"net/http"
)

// StatusResponse is the envelope returned by the JSON API.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Success sends {"status":"success"} with status 200.
func Success(w http.ResponseWriter) {
	JSON(w, http.StatusOK, StatusResponse{Status: "success"})
}

// Error sends {"status":"error","message":...}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, StatusResponse{Status: "error", Message: message})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
