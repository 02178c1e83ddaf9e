package internal

import (
	"context"
	"errors"
)

var (
	// ErrAuthRequired is returned when a remote call is made without a session.
	ErrAuthRequired = errors.New("remote: not signed in")
	// ErrAuthExpired is returned when the remote rejects the session.
	ErrAuthExpired = errors.New("remote: session expired")
	// ErrRemoteRequestFailed wraps any other unsuccessful remote response.
	ErrRemoteRequestFailed = errors.New("remote: request failed")

	ErrEventNotFound = errors.New("event not found")
)

// Remote is an external calendar service holding mirrored events.
type Remote interface {
	Connected() bool
	Disconnect()

	Profile(context.Context) (*Profile, error)
	Calendars(context.Context) ([]CalendarInfo, error)

	// Events returns the events of calendarID touching [from, to], both inclusive.
	Events(_ context.Context, calendarID string, from, to Date) ([]Event, error)
	CreateEvent(_ context.Context, calendarID string, _ NewEvent) (Event, error)
	// UpdateEvent patches the remote copy of current, which must be mirrored.
	UpdateEvent(_ context.Context, current Event, _ EventPatch) (Event, error)
	// DeleteEvent succeeds when the event is already gone.
	DeleteEvent(_ context.Context, _ Event) error
}
