// Package drag turns pointer gestures on an event bar into new date ranges.
package drag

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/guilherme-santos/linearcalendar/internal"
)

var (
	ErrNotDragging    = errors.New("drag: no gesture in progress")
	ErrDragInProgress = errors.New("drag: a gesture is already in progress")
	ErrUnknownKind    = errors.New("drag: unknown gesture kind")
)

type Kind string

const (
	Move        Kind = "move"
	ResizeStart Kind = "resize-start"
	ResizeEnd   Kind = "resize-end"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Move, ResizeStart, ResizeEnd:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// State is the active gesture.
type State struct {
	EventID string        `json:"eventId"`
	Kind    Kind          `json:"type"`
	Origin  internal.Date `json:"originDate"`
}

// Source looks events up by id.
type Source interface {
	Event(id string) (internal.Event, bool)
}

// Rescheduler applies a new range to an event, locally or through the remote.
type Rescheduler interface {
	Reschedule(ctx context.Context, ev internal.Event, start, end internal.Date) error
}

// Outcome describes what a drop did.
type Outcome struct {
	Event   internal.Event `json:"event"`
	Changed bool           `json:"changed"`
}

// Machine is Idle until Start and returns to Idle on Drop or Cancel. At
// most one gesture is active at a time.
type Machine struct {
	src Source
	dst Rescheduler

	mu     sync.Mutex
	active *State
}

func New(src Source, dst Rescheduler) *Machine {
	return &Machine{src: src, dst: dst}
}

// Start begins a gesture anchored on the event's own start date, or its end
// date for a resize-end.
func (m *Machine) Start(eventID string, kind Kind) (State, error) {
	ev, ok := m.src.Event(eventID)
	if !ok {
		return State{}, fmt.Errorf("%w: %s", internal.ErrEventNotFound, eventID)
	}
	origin := ev.Start
	if kind == ResizeEnd {
		origin = ev.End
	}
	return m.StartAt(eventID, kind, origin)
}

// StartAt begins a gesture anchored on an explicit origin date, the day the
// pointer went down on.
func (m *Machine) StartAt(eventID string, kind Kind, origin internal.Date) (State, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return State{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return *m.active, ErrDragInProgress
	}
	m.active = &State{EventID: eventID, Kind: kind, Origin: origin}
	return *m.active, nil
}

func (m *Machine) Active() (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return State{}, false
	}
	return *m.active, true
}

func (m *Machine) Cancel() {
	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()
}

// Drop ends the gesture on target. The machine is Idle afterwards whatever
// the result.
func (m *Machine) Drop(ctx context.Context, target internal.Date) (Outcome, error) {
	m.mu.Lock()
	st := m.active
	m.active = nil
	m.mu.Unlock()

	if st == nil {
		return Outcome{}, ErrNotDragging
	}

	ev, ok := m.src.Event(st.EventID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", internal.ErrEventNotFound, st.EventID)
	}

	start, end, changed := Resolve(ev, st.Kind, st.Origin, target)
	if !changed {
		return Outcome{Event: ev}, nil
	}
	if err := m.dst.Reschedule(ctx, ev, start, end); err != nil {
		return Outcome{Event: ev}, err
	}

	ev.Start, ev.End = start, end
	return Outcome{Event: ev, Changed: true}, nil
}

// Resolve computes the range a gesture produces. A resize that would invert
// the range is rejected and reported as unchanged.
func Resolve(ev internal.Event, kind Kind, origin, target internal.Date) (start, end internal.Date, changed bool) {
	start, end = ev.Start, ev.End

	diff := internal.DaysBetween(origin, target)
	if diff == 0 {
		return start, end, false
	}

	switch kind {
	case Move:
		start = ev.Start.AddDays(diff)
		end = ev.End.AddDays(diff)
	case ResizeStart:
		if candidate := ev.Start.AddDays(diff); !candidate.After(ev.End) {
			start = candidate
		}
	case ResizeEnd:
		if candidate := ev.End.AddDays(diff); !candidate.Before(ev.Start) {
			end = candidate
		}
	}
	return start, end, !start.Equal(ev.Start) || !end.Equal(ev.End)
}
