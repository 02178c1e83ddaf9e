package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/guilherme-santos/linearcalendar/internal"
	"github.com/guilherme-santos/linearcalendar/internal/api/middleware"
	"github.com/guilherme-santos/linearcalendar/internal/drag"
	"github.com/guilherme-santos/linearcalendar/internal/syncer"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body. A malformed date inside the body is reported
// as a validation error, anything else as a bad request.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	if errors.Is(err, internal.ErrInvalidDateFormat) {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
		return false
	}
	middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
	return false
}

// writeFailure maps a domain error to its HTTP status.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, internal.ErrInvalidDateFormat), errors.Is(err, drag.ErrUnknownKind):
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
	case errors.Is(err, internal.ErrEventNotFound), errors.Is(err, syncer.ErrCalendarNotFound):
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, err.Error())
	case errors.Is(err, drag.ErrNotDragging), errors.Is(err, drag.ErrDragInProgress):
		middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, err.Error())
	case errors.Is(err, internal.ErrAuthRequired), errors.Is(err, internal.ErrAuthExpired):
		middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, err.Error())
	case errors.Is(err, internal.ErrRemoteRequestFailed):
		middleware.WriteError(w, http.StatusBadGateway, middleware.ErrRemote, err.Error())
	default:
		log.Printf("Unhandled error: %v", err)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "An unexpected error occurred")
	}
}
