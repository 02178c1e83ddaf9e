// Package store holds the single source of truth for the calendar: local
// events, the mirrored cache, and the UI state around them.
package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guilherme-santos/linearcalendar/internal"
)

// Setting keys written through the Persister.
const (
	SettingTheme        = "theme"
	SettingYear         = "year"
	SettingWasConnected = "was_connected"
)

// Persister stores the state that survives a restart. Mirrored events,
// the profile and the session are never handed to it.
type Persister interface {
	LoadEvents(context.Context) ([]internal.Event, error)
	SaveEvent(context.Context, internal.Event) error
	DeleteEvent(ctx context.Context, id string) error
	Setting(ctx context.Context, key string) (string, bool, error)
	SaveSetting(ctx context.Context, key, value string) error
}

type ChangeKind string

const (
	EventsChanged    ChangeKind = "events"
	MirroredChanged  ChangeKind = "mirrored"
	ModalChanged     ChangeKind = "modal"
	ThemeChanged     ChangeKind = "theme"
	YearChanged      ChangeKind = "year"
	CalendarsChanged ChangeKind = "calendars"
	SessionChanged   ChangeKind = "session"
)

type Change struct {
	Kind ChangeKind `json:"kind"`
}

type Option func(*Store)

// WithClock sets the function used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithOutput sets where persistence failures are logged.
func WithOutput(w io.Writer) Option {
	return func(s *Store) { s.output = w }
}

// WithPersister writes local state through p.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// Store is safe for concurrent use. Mutations are applied in call order and
// subscribers are notified after the lock is released.
type Store struct {
	now       func() time.Time
	output    io.Writer
	persister Persister

	mu        sync.RWMutex
	events    []internal.Event
	mirrored  []internal.Event
	calendars []internal.CalendarInfo
	modal     internal.ModalState
	theme     internal.Theme
	year      int
	connected bool
	loading   bool
	wasConn   bool
	profile   *internal.Profile

	subMu  sync.Mutex
	subSeq int
	subs   map[int]func(Change)
}

func New(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		output: os.Stdout,
		theme:  internal.ThemeLight,
		subs:   map[int]func(Change){},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.year = internal.ClampYear(s.now().Year())
	return s
}

// Open builds a store and restores the persisted local state from p.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := New(append(opts, WithPersister(p))...)

	events, err := p.LoadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load events: %w", err)
	}
	s.events = events

	theme, ok, err := p.Setting(ctx, SettingTheme)
	if err != nil {
		return nil, fmt.Errorf("unable to load theme: %w", err)
	}
	if ok && internal.Theme(theme) == internal.ThemeDark {
		s.theme = internal.ThemeDark
	}

	year, ok, err := p.Setting(ctx, SettingYear)
	if err != nil {
		return nil, fmt.Errorf("unable to load year: %w", err)
	}
	if n, err := strconv.Atoi(year); ok && err == nil {
		s.year = internal.ClampYear(n)
	}

	wasConn, ok, err := p.Setting(ctx, SettingWasConnected)
	if err != nil {
		return nil, fmt.Errorf("unable to load session flag: %w", err)
	}
	s.wasConn = ok && wasConn == "true"

	return s, nil
}

// Subscribe registers fn for every change and returns its cancel func.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.subSeq++
	id := s.subSeq
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(kind ChangeKind) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(Change{Kind: kind})
	}
}

func (s *Store) logf(format string, a ...any) {
	internal.Logf(s.output, "store:", nil, format, a...)
}

// persist writes through to the persister. Callers hold s.mu so writes reach
// the persister in the same order as they were applied in memory.
func (s *Store) persist(fn func(context.Context, Persister) error) {
	if s.persister == nil {
		return
	}
	if err := fn(context.Background(), s.persister); err != nil {
		s.logf("unable to persist: %v", err)
	}
}

// AddEvent inserts a locally owned event with a fresh id.
func (s *Store) AddEvent(in internal.NewEvent) internal.Event {
	ev := internal.Event{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Start:       in.Start,
		End:         in.End,
		Color:       in.Color,
		Description: in.Description,
	}
	if ev.Color == "" {
		ev.Color = internal.DefaultEventColors[0]
	}
	ev.Clamp()

	s.mu.Lock()
	s.events = append(s.events, ev)
	s.persist(func(ctx context.Context, p Persister) error { return p.SaveEvent(ctx, ev) })
	s.mu.Unlock()

	s.notify(EventsChanged)
	return ev
}

// UpdateEvent merges patch into the local event id.
func (s *Store) UpdateEvent(id string, patch internal.EventPatch) (internal.Event, bool) {
	s.mu.Lock()
	i := indexOf(s.events, id)
	if i < 0 {
		s.mu.Unlock()
		return internal.Event{}, false
	}
	ev := s.events[i].Apply(patch)
	s.events[i] = ev
	s.persist(func(ctx context.Context, p Persister) error { return p.SaveEvent(ctx, ev) })
	s.mu.Unlock()

	s.notify(EventsChanged)
	return ev, true
}

func (s *Store) DeleteEvent(id string) bool {
	s.mu.Lock()
	i := indexOf(s.events, id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.events = slices.Delete(s.events, i, i+1)
	s.persist(func(ctx context.Context, p Persister) error { return p.DeleteEvent(ctx, id) })
	s.mu.Unlock()

	s.notify(EventsChanged)
	return true
}

// SetMirroredEvents replaces the whole mirrored cache.
func (s *Store) SetMirroredEvents(events []internal.Event) {
	cp := make([]internal.Event, len(events))
	for i, ev := range events {
		ev.Clamp()
		cp[i] = ev.Copy()
	}

	s.mu.Lock()
	s.mirrored = cp
	s.mu.Unlock()

	s.notify(MirroredChanged)
}

func (s *Store) AddMirroredEvent(ev internal.Event) {
	ev.Clamp()

	s.mu.Lock()
	s.mirrored = append(s.mirrored, ev.Copy())
	s.mu.Unlock()

	s.notify(MirroredChanged)
}

// UpdateMirroredEvent merges patch into the cached copy of a mirrored event.
func (s *Store) UpdateMirroredEvent(id string, patch internal.EventPatch) (internal.Event, bool) {
	s.mu.Lock()
	i := indexOf(s.mirrored, id)
	if i < 0 {
		s.mu.Unlock()
		return internal.Event{}, false
	}
	ev := s.mirrored[i].Apply(patch)
	s.mirrored[i] = ev
	s.mu.Unlock()

	s.notify(MirroredChanged)
	return ev.Copy(), true
}

func (s *Store) RemoveMirroredEvent(id string) bool {
	s.mu.Lock()
	i := indexOf(s.mirrored, id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.mirrored = slices.Delete(s.mirrored, i, i+1)
	s.mu.Unlock()

	s.notify(MirroredChanged)
	return true
}

// Event finds id among local events first, then the mirrored cache.
func (s *Store) Event(id string) (internal.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.events, id); i >= 0 {
		return s.events[i], true
	}
	if i := indexOf(s.mirrored, id); i >= 0 {
		return s.mirrored[i].Copy(), true
	}
	return internal.Event{}, false
}

func (s *Store) Events() []internal.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

func (s *Store) Mirrored() []internal.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEvents(s.mirrored)
}

// AllEvents returns local events followed by mirrored ones.
func (s *Store) AllEvents() []internal.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]internal.Event, 0, len(s.events)+len(s.mirrored))
	all = append(all, s.events...)
	return append(all, copyEvents(s.mirrored)...)
}

func indexOf(events []internal.Event, id string) int {
	return slices.IndexFunc(events, func(e internal.Event) bool { return e.ID == id })
}

func copyEvents(events []internal.Event) []internal.Event {
	cp := make([]internal.Event, len(events))
	for i, ev := range events {
		cp[i] = ev.Copy()
	}
	return cp
}
