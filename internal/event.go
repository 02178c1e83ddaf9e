package internal

import "fmt"

// DefaultEventColors is the palette offered for locally owned events. The
// first entry is used when no colour is given.
var DefaultEventColors = []string{
	"#6366f1", // indigo
	"#f43f5e", // rose
	"#10b981", // emerald
	"#f59e0b", // amber
	"#8b5cf6", // violet
	"#ec4899", // pink
	"#0ea5e9", // sky
	"#f97316", // orange
}

// DefaultRemoteColor is used for mirrored events whose calendar has no colour.
const DefaultRemoteColor = "#3b82f6"

// Event is a whole-day event spanning Start to End, both inclusive.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Start       Date   `json:"startDate"`
	End         Date   `json:"endDate"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`

	// Mirror is nil for locally owned events.
	Mirror *Mirror `json:"mirror,omitempty"`
}

// Mirror marks an event whose canonical copy lives in a remote calendar.
type Mirror struct {
	CalendarID string `json:"calendarId"`
	RemoteID   string `json:"remoteId"`
}

func (e Event) IsMirrored() bool {
	return e.Mirror != nil
}

func (e Event) CalendarID() string {
	if e.Mirror == nil {
		return ""
	}
	return e.Mirror.CalendarID
}

// Overlaps reports whether the event touches any day in [from, to].
func (e Event) Overlaps(from, to Date) bool {
	return !e.Start.After(to) && !e.End.Before(from)
}

// Clamp pulls End back to Start when the range is inverted.
func (e *Event) Clamp() {
	if e.End.IsZero() || e.End.Before(e.Start) {
		e.End = e.Start
	}
}

// Apply merges the supplied fields of p into a copy of e.
func (e Event) Apply(p EventPatch) Event {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Start != nil {
		e.Start = *p.Start
	}
	if p.End != nil {
		e.End = *p.End
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	e.Clamp()
	return e
}

// Copy returns e with its own Mirror so callers can't alias cached state.
func (e Event) Copy() Event {
	if e.Mirror != nil {
		m := *e.Mirror
		e.Mirror = &m
	}
	return e
}

// EventPatch is a partial update; nil fields are left untouched.
type EventPatch struct {
	Title       *string `json:"title,omitempty"`
	Start       *Date   `json:"startDate,omitempty"`
	End         *Date   `json:"endDate,omitempty"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Start == nil && p.End == nil && p.Color == nil && p.Description == nil
}

// Validate rejects a supplied date that is empty.
func (p EventPatch) Validate() error {
	if p.Start != nil && p.Start.IsZero() {
		return fmt.Errorf("%w: startDate is empty", ErrInvalidDateFormat)
	}
	if p.End != nil && p.End.IsZero() {
		return fmt.Errorf("%w: endDate is empty", ErrInvalidDateFormat)
	}
	return nil
}

// RangePatch is the patch a drag produces.
func RangePatch(start, end Date) EventPatch {
	return EventPatch{Start: &start, End: &end}
}

// NewEvent is the input for creating an event; the ID is assigned on insert.
type NewEvent struct {
	Title       string `json:"title"`
	Start       Date   `json:"startDate"`
	End         Date   `json:"endDate"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}
