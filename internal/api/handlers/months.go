package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/guilherme-santos/linearcalendar/internal"
	"github.com/guilherme-santos/linearcalendar/internal/api/middleware"
	"github.com/guilherme-santos/linearcalendar/internal/holiday"
	"github.com/guilherme-santos/linearcalendar/internal/layout"
	"github.com/guilherme-santos/linearcalendar/internal/store"
)

// MonthResponse is everything needed to render one month row.
type MonthResponse struct {
	Year     int                         `json:"year"`
	Month    int                         `json:"month"`
	Name     string                      `json:"name"`
	Cells    [layout.Columns]layout.Cell `json:"cells"`
	Events   []layout.Positioned         `json:"events"`
	Lanes    int                         `json:"lanes"`
	Holidays map[string]internal.Holiday `json:"holidays"`
}

// GetMonth lays out local and mirrored events for /months/{year}/{month}.
func GetMonth(st *store.Store, holidays holiday.Provider, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		year, err := strconv.Atoi(vars["year"])
		if err != nil || year < internal.MinYear || year > internal.MaxYear {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Year out of range")
			return
		}
		m, err := strconv.Atoi(vars["month"])
		if err != nil || m < 1 || m > 12 {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Month must be between 1 and 12")
			return
		}
		month := time.Month(m)

		positioned := layout.Month(st.AllEvents(), year, month)
		writeJSON(w, http.StatusOK, MonthResponse{
			Year:     year,
			Month:    m,
			Name:     month.String(),
			Cells:    layout.Cells(year, month, now()),
			Events:   positioned,
			Lanes:    layout.Lanes(positioned),
			Holidays: monthHolidays(holidays, year, month),
		})
	}
}

func monthHolidays(p holiday.Provider, year int, month time.Month) map[string]internal.Holiday {
	out := map[string]internal.Holiday{}
	if p == nil {
		return out
	}
	for k, h := range holiday.Visible(p.Holidays(year)) {
		if h.Date.Month() == month {
			out[k] = h
		}
	}
	return out
}
