package handlers

import (
	"net/http"

	"github.com/guilherme-santos/linearcalendar/internal"
	"github.com/guilherme-santos/linearcalendar/internal/api/middleware"
	"github.com/guilherme-santos/linearcalendar/internal/store"
	"github.com/guilherme-santos/linearcalendar/internal/syncer"
)

type YearResponse struct {
	Year    int           `json:"year"`
	Today   internal.Date `json:"today"`
	MinYear int           `json:"minYear"`
	MaxYear int           `json:"maxYear"`
}

// SetYearRequest carries either an absolute year or a step.
type SetYearRequest struct {
	Year *int   `json:"year,omitempty"`
	Step string `json:"step,omitempty"`
}

func yearResponse(st *store.Store, year int) YearResponse {
	return YearResponse{
		Year:    year,
		Today:   st.Today(),
		MinYear: internal.MinYear,
		MaxYear: internal.MaxYear,
	}
}

func GetYear(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, yearResponse(st, st.Year()))
	}
}

// SetYear navigates and re-fetches the mirrored events for the new year.
// Out of range years are clamped.
func SetYear(st *store.Store, ctrl *syncer.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetYearRequest
		if !decode(w, r, &req) {
			return
		}

		target := st.Year()
		switch {
		case req.Year != nil:
			target = *req.Year
		case req.Step == "prev":
			target--
		case req.Step == "next":
			target++
		case req.Step == "today":
			target = st.Today().Year()
		default:
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, `Expected "year" or a "step" of prev, next or today`)
			return
		}

		year, err := ctrl.SetYear(r.Context(), target)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, yearResponse(st, year))
	}
}

type ThemeResponse struct {
	Theme internal.Theme `json:"theme"`
}

func GetTheme(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ThemeResponse{Theme: st.Theme()})
	}
}

func ToggleTheme(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ThemeResponse{Theme: st.ToggleTheme()})
	}
}

func GetModal(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, st.Modal())
	}
}

// SetModal opens the modal in create or edit mode, or closes it.
func SetModal(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req internal.ModalState
		if !decode(w, r, &req) {
			return
		}

		switch {
		case !req.IsOpen:
			st.CloseModal()
		case req.Mode == internal.ModalCreate:
			st.OpenCreateModal(req.PrefillDate)
		case req.Mode == internal.ModalEdit:
			if _, ok := st.Event(req.EventID); !ok {
				middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
				return
			}
			st.OpenEditModal(req.EventID)
		default:
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, `Mode must be "create" or "edit"`)
			return
		}
		writeJSON(w, http.StatusOK, st.Modal())
	}
}
