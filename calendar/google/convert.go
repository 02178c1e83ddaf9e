package google

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/linearcalendar/internal"
)

// IDPrefix marks ids of events mirrored from Google.
const IDPrefix = "google:"

// Event colour ids as documented by the Calendar API colors endpoint.
var colors = map[string]string{
	"1":  "#7986cb", // lavender
	"2":  "#33b679", // sage
	"3":  "#8e24aa", // grape
	"4":  "#e67c73", // flamingo
	"5":  "#f6bf26", // banana
	"6":  "#f4511e", // tangerine
	"7":  "#039be5", // peacock
	"8":  "#616161", // graphite
	"9":  "#3f51b5", // blueberry
	"10": "#0b8043", // basil
	"11": "#d50000", // tomato
}

func newCalendarInfo(item *calendar.CalendarListEntry) internal.CalendarInfo {
	color := item.BackgroundColor
	if color == "" {
		color = internal.DefaultRemoteColor
	}
	return internal.CalendarInfo{
		ID:              item.Id,
		Summary:         item.Summary,
		BackgroundColor: color,
		Primary:         item.Primary,
	}
}

// newEvent converts a Google event into an inclusive local range. All-day
// end dates are exclusive on the wire. Items with no date at all are
// reported as not ok.
func newEvent(item *calendar.Event, calendarID string) (internal.Event, bool) {
	if item == nil || item.Start == nil {
		return internal.Event{}, false
	}

	var start, end internal.Date
	switch {
	case item.Start.Date != "":
		var err error
		if start, err = internal.ParseISO(item.Start.Date); err != nil {
			return internal.Event{}, false
		}
		end = start
		if item.End != nil && item.End.Date != "" {
			if exclusive, err := internal.ParseISO(item.End.Date); err == nil {
				end = exclusive.AddDays(-1)
			}
		}
	case len(item.Start.DateTime) >= len(internal.DateFormat):
		var err error
		if start, err = internal.ParseISO(item.Start.DateTime[:len(internal.DateFormat)]); err != nil {
			return internal.Event{}, false
		}
		end = start
		if item.End != nil && len(item.End.DateTime) >= len(internal.DateFormat) {
			if d, err := internal.ParseISO(item.End.DateTime[:len(internal.DateFormat)]); err == nil {
				end = d
			}
		}
	default:
		return internal.Event{}, false
	}

	title := item.Summary
	if title == "" {
		title = "(No title)"
	}
	color, ok := colors[item.ColorId]
	if !ok {
		color = internal.DefaultRemoteColor
	}

	e := internal.Event{
		ID:          IDPrefix + item.Id,
		Title:       title,
		Start:       start,
		End:         end,
		Color:       color,
		Description: item.Description,
		Mirror: &internal.Mirror{
			CalendarID: calendarID,
			RemoteID:   item.Id,
		},
	}
	e.Clamp()
	return e, true
}

func newEventDate(d internal.Date, loc *time.Location) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		Date:     d.String(),
		TimeZone: loc.String(),
	}
}

func newGoogleEvent(req internal.NewEvent, loc *time.Location) *calendar.Event {
	end := req.End
	if end.IsZero() || end.Before(req.Start) {
		end = req.Start
	}
	return &calendar.Event{
		Summary:     req.Title,
		Description: req.Description,
		Start:       newEventDate(req.Start, loc),
		End:         newEventDate(end.AddDays(1), loc),
	}
}

// newGooglePatch only carries the supplied fields, except that start and end
// always travel together: Google rejects a range with one side missing.
func newGooglePatch(current internal.Event, p internal.EventPatch, loc *time.Location) *calendar.Event {
	g := &calendar.Event{}
	if p.Title != nil {
		g.Summary = *p.Title
		if g.Summary == "" {
			g.ForceSendFields = append(g.ForceSendFields, "Summary")
		}
	}
	if p.Description != nil {
		g.Description = *p.Description
		if g.Description == "" {
			g.ForceSendFields = append(g.ForceSendFields, "Description")
		}
	}
	if p.Start != nil || p.End != nil {
		next := current.Apply(internal.EventPatch{Start: p.Start, End: p.End})
		g.Start = newEventDate(next.Start, loc)
		g.End = newEventDate(next.End.AddDays(1), loc)
	}
	return g
}

func endOfDay(d internal.Date, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, loc)
}
