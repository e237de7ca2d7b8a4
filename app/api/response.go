// Package api holds the JSON envelope and pagination metadata shared by
// every endpoint of the directory API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const StatusSuccess = "success"

// MessageServerError is the only detail a client sees for a failed request.
const MessageServerError = "Server Error"

// Response is the success envelope. Meta is only present on paginated
// listings.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// ErrorResponse is the envelope written for 4xx and 5xx responses.
type ErrorResponse struct {
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func WriteSuccess(w http.ResponseWriter, message string, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message})
}

// WriteServerError logs err against the request and writes a generic 500.
func WriteServerError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	WriteError(w, http.StatusInternalServerError, MessageServerError)
}
