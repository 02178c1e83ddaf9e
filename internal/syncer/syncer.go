// Package syncer reconciles the store's mirrored events with the remote
// calendar service.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guilherme-santos/linearcalendar/internal"
)

var ErrCalendarNotFound = errors.New("calendar not found")

type (
	Event        = internal.Event
	CalendarInfo = internal.CalendarInfo
)

// Store is the part of the event store the controller drives.
type Store interface {
	Year() int
	SetYear(int) int

	Calendars() []CalendarInfo
	SetCalendars([]CalendarInfo)
	ToggleCalendar(id string) (enabled, ok bool)
	EnabledCalendars() []CalendarInfo

	Connected() bool
	SetConnected(bool)
	WasConnected() bool
	SetLoading(bool)
	SetProfile(*internal.Profile)

	Event(id string) (Event, bool)
	AddEvent(internal.NewEvent) Event
	UpdateEvent(id string, _ internal.EventPatch) (Event, bool)
	DeleteEvent(id string) bool

	SetMirroredEvents([]Event)
	AddMirroredEvent(Event)
	UpdateMirroredEvent(id string, _ internal.EventPatch) (Event, bool)
	RemoveMirroredEvent(id string) bool
}

// Controller applies user intent to the store, through the remote when the
// event is mirrored.
type Controller struct {
	output io.Writer
	remote internal.Remote
	store  Store

	wg sync.WaitGroup

	// DispatchTimeout bounds a background patch sent after an optimistic
	// update.
	DispatchTimeout time.Duration
}

func New(output io.Writer, remote internal.Remote, store Store) *Controller {
	if output == nil {
		output = os.Stdout
	}
	return &Controller{
		output:          output,
		remote:          remote,
		store:           store,
		DispatchTimeout: 30 * time.Second,
	}
}

// Connect loads the profile and calendar list, enables every calendar and
// mirrors the displayed year. The remote must already hold a session.
func (c *Controller) Connect(ctx context.Context) error {
	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	if !c.remote.Connected() {
		c.store.SetConnected(false)
		return internal.ErrAuthRequired
	}
	c.store.SetConnected(true)

	var (
		g       errgroup.Group
		profile *internal.Profile
		cals    []CalendarInfo
	)
	g.Go(func() error {
		p, err := c.remote.Profile(ctx)
		if err != nil {
			logf(c.output, nil, "Unable to get profile: %v", err)
			return nil
		}
		profile = p
		return nil
	})
	g.Go(func() (err error) {
		cals, err = c.remote.Calendars(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logf(c.output, nil, "Unable to connect: %v", err)
		if isAuthError(err) {
			c.endSession()
		} else {
			c.store.SetConnected(false)
		}
		return err
	}

	for i := range cals {
		cals[i].Enabled = true
	}
	c.store.SetProfile(profile)
	c.store.SetCalendars(cals)
	logf(c.output, nil, "Connected with %d calendar(s)", len(cals))

	return c.fetch(ctx)
}

// AutoReconnect connects once if the previous run ended connected.
func (c *Controller) AutoReconnect(ctx context.Context) error {
	if c.store.Connected() || !c.store.WasConnected() {
		return nil
	}
	logf(c.output, nil, "Reconnecting previous session...")
	return c.Connect(ctx)
}

// Disconnect drops the session and everything derived from it.
func (c *Controller) Disconnect() {
	c.remote.Disconnect()
	c.store.SetConnected(false)
	c.store.SetMirroredEvents(nil)
	c.store.SetCalendars(nil)
	c.store.SetProfile(nil)
}

// Refresh re-fetches the enabled calendars for the displayed year.
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.store.Connected() || !c.remote.Connected() {
		return internal.ErrAuthRequired
	}
	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	return c.fetch(ctx)
}

// ToggleCalendar flips a calendar's enabled flag and re-fetches. The flag
// is local state only; nothing is written to the remote.
func (c *Controller) ToggleCalendar(ctx context.Context, id string) (bool, error) {
	enabled, ok := c.store.ToggleCalendar(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrCalendarNotFound, id)
	}
	if !c.store.Connected() {
		return enabled, nil
	}

	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	return enabled, c.fetch(ctx)
}

// SetYear changes the displayed year and mirrors it when connected.
func (c *Controller) SetYear(ctx context.Context, year int) (int, error) {
	prev := c.store.Year()
	year = c.store.SetYear(year)
	if year == prev || !c.store.Connected() || len(c.store.Calendars()) == 0 {
		return year, nil
	}

	c.store.SetLoading(true)
	defer c.store.SetLoading(false)

	return year, c.fetch(ctx)
}

// fetch replaces the mirrored collection with one range fetch per enabled
// calendar. A failing calendar contributes no events; an expired session
// ends the session instead.
func (c *Controller) fetch(ctx context.Context) error {
	enabled := c.store.EnabledCalendars()
	if len(enabled) == 0 {
		c.store.SetMirroredEvents(nil)
		return nil
	}

	from, to := internal.YearRange(c.store.Year())

	results := make([][]Event, len(enabled))
	errs := make([]error, len(enabled))

	var g errgroup.Group
	for i, cal := range enabled {
		g.Go(func() error {
			events, err := c.remote.Events(ctx, cal.ID, from, to)
			if err != nil {
				logf(c.output, &cal, "Unable to get list of events: %v", err)
				errs[i] = err
				return nil
			}

			color := cal.BackgroundColor
			if color == "" {
				color = internal.DefaultRemoteColor
			}
			for j := range events {
				events[j].Color = color
			}
			results[i] = events
			return nil
		})
	}
	g.Wait()

	for _, err := range errs {
		if isAuthError(err) {
			c.endSession()
			return err
		}
	}

	events := slices.Concat(results...)
	c.store.SetMirroredEvents(events)
	logf(c.output, nil, "%d event(s) mirrored from %d calendar(s) for %d", len(events), len(enabled), from.Year())
	return nil
}

// CreateEvent creates on the primary remote calendar while connected, and
// locally otherwise.
func (c *Controller) CreateEvent(ctx context.Context, in internal.NewEvent) (Event, error) {
	if in.End.IsZero() || in.End.Before(in.Start) {
		in.End = in.Start
	}
	if !c.store.Connected() {
		return c.store.AddEvent(in), nil
	}

	cal := c.primaryCalendar()
	ev, err := c.remote.CreateEvent(ctx, cal.ID, in)
	if err != nil {
		logf(c.output, &cal, "Unable to create event: %v", err)
		return Event{}, c.fail(err)
	}
	if cal.BackgroundColor != "" {
		ev.Color = cal.BackgroundColor
	}
	c.store.AddMirroredEvent(ev)
	return ev, nil
}

// EditEvent updates an event. A mirrored event is patched remotely first
// and the cache follows only on success; its colour is never changed.
func (c *Controller) EditEvent(ctx context.Context, id string, patch internal.EventPatch) (Event, error) {
	if err := patch.Validate(); err != nil {
		return Event{}, err
	}
	ev, ok := c.store.Event(id)
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", internal.ErrEventNotFound, id)
	}

	if !ev.IsMirrored() {
		updated, ok := c.store.UpdateEvent(id, patch)
		if !ok {
			return Event{}, fmt.Errorf("%w: %s", internal.ErrEventNotFound, id)
		}
		return updated, nil
	}

	patch.Color = nil
	if patch.IsEmpty() {
		return ev, nil
	}
	if _, err := c.remote.UpdateEvent(ctx, ev, patch); err != nil {
		logf(c.output, calendarOf(ev), "Unable to update event %s: %v", ev.ID, err)
		return Event{}, c.fail(err)
	}
	updated, ok := c.store.UpdateMirroredEvent(id, patch)
	if !ok {
		// Replaced by a refresh while the patch was in flight.
		return ev.Apply(patch), nil
	}
	return updated, nil
}

func (c *Controller) DeleteEvent(ctx context.Context, id string) error {
	ev, ok := c.store.Event(id)
	if !ok {
		return fmt.Errorf("%w: %s", internal.ErrEventNotFound, id)
	}

	if !ev.IsMirrored() {
		c.store.DeleteEvent(id)
		return nil
	}

	if err := c.remote.DeleteEvent(ctx, ev); err != nil {
		logf(c.output, calendarOf(ev), "Unable to delete event %s: %v", ev.ID, err)
		return c.fail(err)
	}
	c.store.RemoveMirroredEvent(id)
	return nil
}

// Reschedule moves ev to [start, end]. A mirrored event is updated in the
// cache right away and patched remotely in the background; a remote failure
// is logged and the cache is kept as it is.
func (c *Controller) Reschedule(ctx context.Context, ev Event, start, end internal.Date) error {
	patch := internal.RangePatch(start, end)

	if !ev.IsMirrored() {
		if _, ok := c.store.UpdateEvent(ev.ID, patch); !ok {
			return fmt.Errorf("%w: %s", internal.ErrEventNotFound, ev.ID)
		}
		return nil
	}

	if _, ok := c.store.UpdateMirroredEvent(ev.ID, patch); !ok {
		return fmt.Errorf("%w: %s", internal.ErrEventNotFound, ev.ID)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.DispatchTimeout)
		defer cancel()

		// The response is dropped: the cache already holds the newer value.
		if _, err := c.remote.UpdateEvent(ctx, ev, patch); err != nil {
			logf(c.output, calendarOf(ev), "Unable to reschedule event %s: %v", ev.ID, err)
			c.fail(err)
		}
	}()
	return nil
}

// Wait blocks until background patches have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) primaryCalendar() CalendarInfo {
	cals := c.store.Calendars()
	for _, cal := range cals {
		if cal.Primary || cal.ID == internal.PrimaryCalendarID {
			return cal
		}
	}
	if len(cals) > 0 {
		return cals[0]
	}
	return CalendarInfo{ID: internal.PrimaryCalendarID}
}

// fail ends the session on an authentication error and returns err.
func (c *Controller) fail(err error) error {
	if isAuthError(err) {
		c.endSession()
	}
	return err
}

func (c *Controller) endSession() {
	logf(c.output, nil, "Session ended, mirrored events cleared")
	c.remote.Disconnect()
	c.store.SetConnected(false)
	c.store.SetMirroredEvents(nil)
}

func isAuthError(err error) bool {
	return errors.Is(err, internal.ErrAuthExpired) || errors.Is(err, internal.ErrAuthRequired)
}
