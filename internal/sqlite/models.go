package sqlite

import "github.com/guilherme-santos/linearcalendar/internal"

type Event struct {
	ID          string
	Title       string
	StartDate   internal.Date `db:"start_date"`
	EndDate     internal.Date `db:"end_date"`
	Color       string
	Description string
}

func newEvent(ev internal.Event) Event {
	return Event{
		ID:          ev.ID,
		Title:       ev.Title,
		StartDate:   ev.Start,
		EndDate:     ev.End,
		Color:       ev.Color,
		Description: ev.Description,
	}
}

func (e Event) Convert() internal.Event {
	ev := internal.Event{
		ID:          e.ID,
		Title:       e.Title,
		Start:       e.StartDate,
		End:         e.EndDate,
		Color:       e.Color,
		Description: e.Description,
	}
	ev.Clamp()
	return ev
}
