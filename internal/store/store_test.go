package store

import (
	"context"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/guilherme-santos/linearcalendar/internal"
)

type memPersister struct {
	events   map[string]internal.Event
	settings map[string]string
}

func newMemPersister() *memPersister {
	return &memPersister{events: map[string]internal.Event{}, settings: map[string]string{}}
}

func (m *memPersister) LoadEvents(context.Context) ([]internal.Event, error) {
	var events []internal.Event
	for _, ev := range m.events {
		events = append(events, ev)
	}
	slices.SortFunc(events, func(a, b internal.Event) int { return a.Start.Compare(b.Start) })
	return events, nil
}

func (m *memPersister) SaveEvent(_ context.Context, ev internal.Event) error {
	m.events[ev.ID] = ev
	return nil
}

func (m *memPersister) DeleteEvent(_ context.Context, id string) error {
	delete(m.events, id)
	return nil
}

func (m *memPersister) Setting(_ context.Context, key string) (string, bool, error) {
	v, ok := m.settings[key]
	return v, ok, nil
}

func (m *memPersister) SaveSetting(_ context.Context, key, value string) error {
	m.settings[key] = value
	return nil
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC) }
}

func newTestStore(opts ...Option) *Store {
	return New(append([]Option{WithClock(fixedClock()), WithOutput(io.Discard)}, opts...)...)
}

func d(s string) internal.Date {
	return internal.MustParseISO(s)
}

func TestAddEvent(t *testing.T) {
	s := newTestStore()
	ev := s.AddEvent(internal.NewEvent{Title: "Trip", Start: d("2024-06-05"), End: d("2024-06-01")})

	if ev.ID == "" {
		t.Fatalf("expected an id to be assigned")
	}
	if !ev.End.Equal(ev.Start) {
		t.Fatalf("expected inverted end to be clamped to start, got %s..%s", ev.Start, ev.End)
	}
	if ev.Color != internal.DefaultEventColors[0] {
		t.Fatalf("expected default colour, got %q", ev.Color)
	}
	if ev.IsMirrored() {
		t.Fatalf("local events must not carry a mirror tag")
	}
	if got, ok := s.Event(ev.ID); !ok || got.Title != "Trip" {
		t.Fatalf("event not found after insert")
	}
}

func TestUpdateEventMergesFields(t *testing.T) {
	s := newTestStore()
	ev := s.AddEvent(internal.NewEvent{Title: "Trip", Start: d("2024-06-01"), End: d("2024-06-03"), Color: "#f43f5e", Description: "x"})

	title := "Holiday"
	got, ok := s.UpdateEvent(ev.ID, internal.EventPatch{Title: &title})
	if !ok {
		t.Fatalf("expected update to succeed")
	}
	if got.Title != "Holiday" || got.Color != "#f43f5e" || got.Description != "x" || !got.Start.Equal(ev.Start) {
		t.Fatalf("unexpected merge result: %+v", got)
	}

	if _, ok := s.UpdateEvent("missing", internal.EventPatch{Title: &title}); ok {
		t.Fatalf("expected update of a missing event to fail")
	}
}

func TestDeleteEvent(t *testing.T) {
	s := newTestStore()
	ev := s.AddEvent(internal.NewEvent{Title: "Trip", Start: d("2024-06-01"), End: d("2024-06-01")})

	if !s.DeleteEvent(ev.ID) {
		t.Fatalf("expected delete to succeed")
	}
	if s.DeleteEvent(ev.ID) {
		t.Fatalf("expected second delete to report missing")
	}
	if len(s.Events()) != 0 {
		t.Fatalf("expected no events left")
	}
}

func TestMirroredEvents(t *testing.T) {
	s := newTestStore()
	local := s.AddEvent(internal.NewEvent{Title: "Local", Start: d("2024-06-01"), End: d("2024-06-01")})

	s.SetMirroredEvents([]internal.Event{
		{ID: "google:a", Title: "A", Start: d("2024-06-02"), End: d("2024-06-02"), Mirror: &internal.Mirror{CalendarID: "primary", RemoteID: "a"}},
		{ID: "google:b", Title: "B", Start: d("2024-06-03"), End: d("2024-06-03"), Mirror: &internal.Mirror{CalendarID: "work", RemoteID: "b"}},
	})

	all := s.AllEvents()
	if len(all) != 3 || all[0].ID != local.ID {
		t.Fatalf("expected local events first, got %+v", all)
	}

	start := d("2024-06-10")
	got, ok := s.UpdateMirroredEvent("google:a", internal.EventPatch{Start: &start})
	if !ok || !got.Start.Equal(start) || !got.End.Equal(start) {
		t.Fatalf("unexpected mirrored update: %+v", got)
	}

	s.SetMirroredEvents([]internal.Event{{ID: "google:c", Title: "C", Start: d("2024-06-04"), End: d("2024-06-04"), Mirror: &internal.Mirror{CalendarID: "primary", RemoteID: "c"}}})
	if m := s.Mirrored(); len(m) != 1 || m[0].ID != "google:c" {
		t.Fatalf("expected the mirrored collection to be replaced, got %+v", m)
	}
	if !s.RemoveMirroredEvent("google:c") || len(s.Mirrored()) != 0 {
		t.Fatalf("expected mirrored event removed")
	}
	if len(s.Events()) != 1 {
		t.Fatalf("mirrored operations must not touch local events")
	}
}

func TestYearNavigationClamps(t *testing.T) {
	s := newTestStore()
	if s.Year() != 2024 {
		t.Fatalf("expected the current year, got %d", s.Year())
	}
	if got := s.SetYear(1980); got != internal.MinYear {
		t.Fatalf("expected clamp to %d, got %d", internal.MinYear, got)
	}
	if got := s.PrevYear(); got != internal.MinYear {
		t.Fatalf("expected to stay at %d, got %d", internal.MinYear, got)
	}
	if got := s.SetYear(2100); got != internal.MaxYear {
		t.Fatalf("expected clamp to %d, got %d", internal.MaxYear, got)
	}
	if got := s.NextYear(); got != internal.MaxYear {
		t.Fatalf("expected to stay at %d, got %d", internal.MaxYear, got)
	}
	if got := s.JumpToToday(); got != 2024 {
		t.Fatalf("expected 2024, got %d", got)
	}
}

func TestModal(t *testing.T) {
	s := newTestStore()
	day := d("2024-06-07")
	s.OpenCreateModal(&day)

	m := s.Modal()
	if !m.IsOpen || m.Mode != internal.ModalCreate || m.PrefillDate == nil || !m.PrefillDate.Equal(day) {
		t.Fatalf("unexpected modal state: %+v", m)
	}

	s.OpenEditModal("abc")
	if m := s.Modal(); m.Mode != internal.ModalEdit || m.EventID != "abc" || m.PrefillDate != nil {
		t.Fatalf("unexpected modal state: %+v", m)
	}

	s.CloseModal()
	if s.Modal().IsOpen {
		t.Fatalf("expected modal closed")
	}
}

func TestToggleCalendar(t *testing.T) {
	s := newTestStore()
	s.SetCalendars([]internal.CalendarInfo{{ID: "primary", Enabled: true}, {ID: "work", Enabled: true}})

	enabled, ok := s.ToggleCalendar("work")
	if !ok || enabled {
		t.Fatalf("expected work to be disabled")
	}
	if got := s.EnabledCalendars(); len(got) != 1 || got[0].ID != "primary" {
		t.Fatalf("unexpected enabled calendars: %+v", got)
	}
	if _, ok := s.ToggleCalendar("nope"); ok {
		t.Fatalf("expected unknown calendar to be reported")
	}
}

func TestSubscribe(t *testing.T) {
	s := newTestStore()

	var kinds []ChangeKind
	cancel := s.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	s.AddEvent(internal.NewEvent{Title: "a", Start: d("2024-06-01"), End: d("2024-06-01")})
	s.ToggleTheme()
	s.NextYear()
	s.SetMirroredEvents(nil)

	want := []ChangeKind{EventsChanged, ThemeChanged, YearChanged, MirroredChanged}
	if !slices.Equal(kinds, want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}

	cancel()
	s.ToggleTheme()
	if len(kinds) != len(want) {
		t.Fatalf("expected no notification after unsubscribing")
	}
}

func TestPersistenceSurvivesRestart(t *testing.T) {
	p := newMemPersister()
	s, err := Open(context.Background(), p, WithClock(fixedClock()), WithOutput(io.Discard))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	ev := s.AddEvent(internal.NewEvent{Title: "Trip", Start: d("2024-06-01"), End: d("2024-06-03")})
	s.ToggleTheme()
	s.SetYear(2031)
	s.SetConnected(true)
	s.SetMirroredEvents([]internal.Event{{ID: "google:x", Start: d("2024-06-01"), End: d("2024-06-01"), Mirror: &internal.Mirror{CalendarID: "primary", RemoteID: "x"}}})

	s2, err := Open(context.Background(), p, WithClock(fixedClock()), WithOutput(io.Discard))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got, ok := s2.Event(ev.ID); !ok || got.Title != "Trip" {
		t.Fatalf("expected local event to survive restart")
	}
	if s2.Theme() != internal.ThemeDark {
		t.Fatalf("expected dark theme to survive restart")
	}
	if s2.Year() != 2031 {
		t.Fatalf("expected year 2031, got %d", s2.Year())
	}
	if len(s2.Mirrored()) != 0 || s2.Connected() {
		t.Fatalf("mirrored events and the session must not survive restart")
	}
	if !s2.WasConnected() {
		t.Fatalf("expected the was-connected flag to survive restart")
	}
	if _, ok := p.events["google:x"]; ok {
		t.Fatalf("mirrored events must never be persisted")
	}
}

// gatedPersister parks the save of one title until released.
type gatedPersister struct {
	*memPersister
	title   string
	saving  chan struct{}
	release chan struct{}
}

func (g *gatedPersister) SaveEvent(ctx context.Context, ev internal.Event) error {
	if ev.Title == g.title {
		close(g.saving)
		<-g.release
	}
	return g.memPersister.SaveEvent(ctx, ev)
}

func TestConcurrentUpdatesPersistInOrder(t *testing.T) {
	p := &gatedPersister{
		memPersister: newMemPersister(),
		title:        "first",
		saving:       make(chan struct{}),
		release:      make(chan struct{}),
	}
	s := newTestStore(WithPersister(p))
	ev := s.AddEvent(internal.NewEvent{Title: "Trip", Start: d("2024-06-01")})

	first, second := "first", "second"
	done := make(chan struct{}, 2)
	go func() {
		s.UpdateEvent(ev.ID, internal.EventPatch{Title: &first})
		done <- struct{}{}
	}()
	<-p.saving

	go func() {
		s.UpdateEvent(ev.ID, internal.EventPatch{Title: &second})
		done <- struct{}{}
	}()
	// Give the second update a chance to run ahead of the parked save.
	time.Sleep(20 * time.Millisecond)
	close(p.release)
	<-done
	<-done

	got, _ := s.Event(ev.ID)
	if got.Title != "second" {
		t.Fatalf("expected the last update in memory, got %q", got.Title)
	}
	if saved := p.events[ev.ID].Title; saved != got.Title {
		t.Fatalf("persisted %q but memory holds %q", saved, got.Title)
	}
}
