// Package web holds the response envelope every handler speaks and the
// mapping from the error taxonomy to HTTP statuses.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hakimbenali/mizan-backend/internal/apperr"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Respond writes a success envelope with data.
func Respond(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data})
}

// RespondMessage writes a success envelope with a message and optional data.
func RespondMessage(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Fail maps err onto the HTTP status for its taxonomy class and writes a
// failure envelope carrying both the given message and the error text.
func Fail(w http.ResponseWriter, message string, err error) {
	write(w, statusFor(err), Envelope{Success: false, Message: message, Error: err.Error()})
}

// FailStatus writes a failure envelope with an explicit status and message.
func FailStatus(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: false, Message: message})
}

func statusFor(err error) int {
	switch {
	case apperr.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInsufficientStock):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
