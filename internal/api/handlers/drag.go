package handlers

import (
	"net/http"

	"github.com/guilherme-santos/linearcalendar/internal"
	"github.com/guilherme-santos/linearcalendar/internal/api/middleware"
	"github.com/guilherme-santos/linearcalendar/internal/drag"
)

type StartDragRequest struct {
	EventID string `json:"eventId"`
	Kind    string `json:"type"`
	// Origin is the day the pointer went down on; the event's own anchor
	// date is used when it is empty.
	Origin internal.Date `json:"originDate"`
}

type DropRequest struct {
	Target internal.Date `json:"targetDate"`
}

func StartDrag(m *drag.Machine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartDragRequest
		if !decode(w, r, &req) {
			return
		}
		if req.EventID == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "eventId is required")
			return
		}
		kind, err := drag.ParseKind(req.Kind)
		if err != nil {
			writeFailure(w, err)
			return
		}

		var st drag.State
		if req.Origin.IsZero() {
			st, err = m.Start(req.EventID, kind)
		} else {
			st, err = m.StartAt(req.EventID, kind, req.Origin)
		}
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// GetDrag reports the active gesture, or 204 when idle.
func GetDrag(m *drag.Machine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := m.Active()
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func Drop(m *drag.Machine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DropRequest
		if !decode(w, r, &req) {
			return
		}
		if req.Target.IsZero() {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "targetDate is required")
			return
		}

		out, err := m.Drop(r.Context(), req.Target)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func CancelDrag(m *drag.Machine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.Cancel()
		w.WriteHeader(http.StatusNoContent)
	}
}
