// Package common holds the response helpers shared by the HTTP route packages.
package common

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ResultResponse is the body returned by the registration form and the
// admin endpoints when they report an outcome rather than data.
type ResultResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// WriteJSONResponse writes a JSON response with the given data
func WriteJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// WriteErrorResponse writes a standardized error response
func WriteErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	WriteJSONResponse(w, ErrorResponse{Error: message}, statusCode)
}

// WriteSuccess writes {"success":true}
func WriteSuccess(w http.ResponseWriter) {
	WriteJSONResponse(w, ResultResponse{Success: true}, http.StatusOK)
}

// WriteFailure writes {"success":false,"error":message} with the given status
func WriteFailure(w http.ResponseWriter, message string, statusCode int) {
	WriteJSONResponse(w, ResultResponse{Success: false, Error: message}, statusCode)
}
