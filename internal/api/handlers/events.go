package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/guilherme-santos/linearcalendar/internal"
	"github.com/guilherme-santos/linearcalendar/internal/api/middleware"
	"github.com/guilherme-santos/linearcalendar/internal/store"
	"github.com/guilherme-santos/linearcalendar/internal/syncer"
)

// ListEvents returns local and mirrored events, optionally limited to the
// ones overlapping ?from=&to=.
func ListEvents(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events := st.AllEvents()

		q := r.URL.Query()
		if q.Has("from") || q.Has("to") {
			from, to := internal.YearRange(st.Year())
			var err error
			if s := q.Get("from"); s != "" {
				if from, err = internal.ParseISO(s); err != nil {
					writeFailure(w, err)
					return
				}
			}
			if s := q.Get("to"); s != "" {
				if to, err = internal.ParseISO(s); err != nil {
					writeFailure(w, err)
					return
				}
			}
			filtered := events[:0]
			for _, e := range events {
				if e.Overlaps(from, to) {
					filtered = append(filtered, e)
				}
			}
			events = filtered
		}

		if events == nil {
			events = []internal.Event{}
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func CreateEvent(ctrl *syncer.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req internal.NewEvent
		if !decode(w, r, &req) {
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" || req.Start.IsZero() {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Title and startDate are required")
			return
		}

		ev, err := ctrl.CreateEvent(r.Context(), req)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, ev)
	}
}

func UpdateEvent(ctrl *syncer.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch internal.EventPatch
		if !decode(w, r, &patch) {
			return
		}
		if err := patch.Validate(); err != nil {
			writeFailure(w, err)
			return
		}
		if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Title cannot be empty")
			return
		}

		ev, err := ctrl.EditEvent(r.Context(), mux.Vars(r)["id"], patch)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ev)
	}
}

func DeleteEvent(ctrl *syncer.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.DeleteEvent(r.Context(), mux.Vars(r)["id"]); err != nil {
			writeFailure(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
