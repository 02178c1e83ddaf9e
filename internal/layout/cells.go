package layout

import (
	"time"

	"github.com/guilherme-santos/linearcalendar/internal"
)

// Cell is one column of a month row. Cells past the month's last day are
// placeholders with Valid unset and no date.
type Cell struct {
	Year    int            `json:"year"`
	Month   time.Month     `json:"month"`
	Day     int            `json:"day"`
	Valid   bool           `json:"isValid"`
	Weekend bool           `json:"isWeekend"`
	Today   bool           `json:"isToday"`
	Date    *internal.Date `json:"date,omitempty"`
}

func Cells(year int, month time.Month, now time.Time) [Columns]Cell {
	days := internal.DaysInMonth(year, month)

	var cells [Columns]Cell
	for i := range cells {
		day := i + 1
		c := Cell{Year: year, Month: month, Day: day, Valid: day <= days}
		if c.Valid {
			d := internal.NewDate(year, month, day)
			c.Date = &d
			c.Weekend = internal.IsWeekend(year, month, day)
			c.Today = internal.IsToday(year, month, day, now)
		}
		cells[i] = c
	}
	return cells
}
