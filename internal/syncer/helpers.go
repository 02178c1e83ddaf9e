package syncer

import (
	"io"

	"github.com/guilherme-santos/linearcalendar/internal"
)

func calendarOf(ev Event) *CalendarInfo {
	if !ev.IsMirrored() {
		return nil
	}
	return &CalendarInfo{ID: ev.Mirror.CalendarID}
}

func logf(w io.Writer, cal *CalendarInfo, format string, a ...any) {
	internal.Logf(w, "", cal, format, a...)
}
