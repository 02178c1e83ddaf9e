// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"runtime/debug"
)

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// ErrorRecovery turns a panic into a 500.
func ErrorRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic recovered: %v\n%s", err, debug.Stack())
				WriteError(w, http.StatusInternalServerError, ErrInternalError, "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

const (
	ErrNotFound      = "not_found"
	ErrBadRequest    = "bad_request"
	ErrConflict      = "conflict"
	ErrInternalError = "internal_error"
	ErrValidation    = "validation_error"
	ErrUnauthorized  = "unauthorized"
	ErrRemote        = "remote_error"
)
