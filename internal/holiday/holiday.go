// Package holiday looks up public holidays for a year.
package holiday

import "github.com/guilherme-santos/linearcalendar/internal"

// Holiday types surfaced to the calendar grid.
const (
	TypePublic = "public"
	TypeBank   = "bank"
)

// Provider maps "YYYY-MM-DD" to the holiday on that day.
type Provider interface {
	Holidays(year int) map[string]internal.Holiday
}

// Visible keeps only public and bank holidays.
func Visible(m map[string]internal.Holiday) map[string]internal.Holiday {
	out := make(map[string]internal.Holiday, len(m))
	for k, h := range m {
		if h.Type == TypePublic || h.Type == TypeBank {
			out[k] = h
		}
	}
	return out
}

// Static is a fixed set of holidays, keyed by date.
type Static map[string]internal.Holiday

func (s Static) Holidays(year int) map[string]internal.Holiday {
	out := map[string]internal.Holiday{}
	for k, h := range s {
		if h.Date.Year() == year {
			out[k] = h
		}
	}
	return out
}
