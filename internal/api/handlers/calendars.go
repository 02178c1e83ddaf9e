package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/guilherme-santos/linearcalendar/internal"
	"github.com/guilherme-santos/linearcalendar/internal/store"
	"github.com/guilherme-santos/linearcalendar/internal/syncer"
)

func ListCalendars(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cals := st.Calendars()
		if cals == nil {
			cals = []internal.CalendarInfo{}
		}
		writeJSON(w, http.StatusOK, cals)
	}
}

type ToggleCalendarResponse struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

func ToggleCalendar(ctrl *syncer.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		enabled, err := ctrl.ToggleCalendar(r.Context(), id)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToggleCalendarResponse{ID: id, Enabled: enabled})
	}
}

// Sync re-fetches the enabled calendars for the displayed year.
func Sync(st *store.Store, ctrl *syncer.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.Refresh(r.Context()); err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"mirrored": len(st.Mirrored())})
	}
}

func Connect(st *store.Store, ctrl *syncer.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.Connect(r.Context()); err != nil {
			writeFailure(w, err)
			return
		}
		GetSession(st)(w, r)
	}
}

func Disconnect(ctrl *syncer.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl.Disconnect()
		w.WriteHeader(http.StatusNoContent)
	}
}
