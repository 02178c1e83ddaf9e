package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/guilherme-santos/linearcalendar/internal"
)

type fakeGoogle struct {
	mu       sync.Mutex
	queries  []string
	bodies   map[string]*calendar.Event
	failWith int
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.failWith)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": f.failWith, "message": http.StatusText(f.failWith)},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/userinfo"):
		json.NewEncoder(w).Encode(map[string]string{"name": "Ada", "email": "ada@example.com", "picture": "https://example.com/ada.png"})

	case strings.HasSuffix(r.URL.Path, "/users/me/calendarList"):
		json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{
			{"id": "ada@example.com", "summary": "Ada", "backgroundColor": "#9fe1e7", "primary": true},
			{"id": "work", "summary": "Work"},
		}})

	case strings.HasSuffix(r.URL.Path, "/calendars/primary/events") && r.Method == http.MethodGet:
		f.queries = append(f.queries, r.URL.RawQuery)
		json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{
			{"id": "a", "summary": "Trip", "start": map[string]string{"date": "2024-06-01"}, "end": map[string]string{"date": "2024-06-04"}},
			{"id": "b", "summary": "Broken", "start": map[string]string{}},
		}})

	case strings.HasSuffix(r.URL.Path, "/calendars/primary/events") && r.Method == http.MethodPost:
		var body calendar.Event
		json.NewDecoder(r.Body).Decode(&body)
		f.bodies["insert"] = &body
		body.Id = "new"
		json.NewEncoder(w).Encode(body)

	case strings.HasSuffix(r.URL.Path, "/calendars/primary/events/a") && r.Method == http.MethodPatch:
		var body calendar.Event
		json.NewDecoder(r.Body).Decode(&body)
		f.bodies["patch"] = &body
		body.Id = "a"
		json.NewEncoder(w).Encode(body)

	case strings.HasSuffix(r.URL.Path, "/calendars/primary/events/gone") && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusGone)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 410, "message": "Resource has been deleted"}})

	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 404, "message": "not found"}})
	}
}

func (f *fakeGoogle) fail(code int) {
	f.mu.Lock()
	f.failWith = code
	f.mu.Unlock()
}

func (f *fakeGoogle) body(name string) *calendar.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[name]
}

func newTestClient(t *testing.T) (*Client, *fakeGoogle) {
	t.Helper()

	fake := &fakeGoogle{bodies: map[string]*calendar.Event{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c := &Client{
		loc:        time.UTC,
		Output:     io.Discard,
		RetryDelay: time.Millisecond,
	}
	err := c.ConnectWithOptions(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	return c, fake
}

func TestClientWithoutSession(t *testing.T) {
	c := &Client{loc: time.UTC, Output: io.Discard}
	ctx := context.Background()

	if c.Connected() {
		t.Fatalf("expected no session")
	}
	if _, err := c.Events(ctx, "primary", internal.MustParseISO("2024-01-01"), internal.MustParseISO("2024-12-31")); !errors.Is(err, internal.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if _, err := c.Profile(ctx); !errors.Is(err, internal.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestClientEvents(t *testing.T) {
	c, fake := newTestClient(t)

	events, err := c.Events(context.Background(), "primary", internal.MustParseISO("2024-01-01"), internal.MustParseISO("2024-12-31"))
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected dateless items to be skipped, got %d events", len(events))
	}
	if e := events[0]; e.Start.String() != "2024-06-01" || e.End.String() != "2024-06-03" || !e.IsMirrored() {
		t.Fatalf("unexpected event: %+v", e)
	}

	fake.mu.Lock()
	q := fake.queries[0]
	fake.mu.Unlock()
	for _, want := range []string{"singleEvents=true", "orderBy=startTime", "maxResults=2500", "timeZone=UTC", "timeMin=2024-01-01T00%3A00%3A00Z", "timeMax=2024-12-31T23%3A59%3A59Z"} {
		if !strings.Contains(q, want) {
			t.Fatalf("expected %q in query %q", want, q)
		}
	}
}

func TestClientCreateAndPatch(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateEvent(ctx, "primary", internal.NewEvent{
		Title: "Day off",
		Start: internal.MustParseISO("2024-05-01"),
		End:   internal.MustParseISO("2024-05-01"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if body := fake.body("insert"); body.End.Date != "2024-05-02" || body.Summary != "Day off" {
		t.Fatalf("unexpected insert body: %+v", body)
	}
	if created.ID != "google:new" || created.End.String() != "2024-05-01" {
		t.Fatalf("unexpected created event: %+v", created)
	}

	current := internal.Event{
		ID:     "google:a",
		Title:  "Trip",
		Start:  internal.MustParseISO("2024-06-01"),
		End:    internal.MustParseISO("2024-06-03"),
		Mirror: &internal.Mirror{CalendarID: "primary", RemoteID: "a"},
	}
	start := internal.MustParseISO("2024-05-30")
	if _, err := c.UpdateEvent(ctx, current, internal.EventPatch{Start: &start}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	body := fake.body("patch")
	if body.Start.Date != "2024-05-30" || body.End.Date != "2024-06-04" {
		t.Fatalf("expected both dates in the patch, got %+v..%+v", body.Start, body.End)
	}
}

func TestClientDeleteAlreadyGone(t *testing.T) {
	c, _ := newTestClient(t)
	ev := internal.Event{ID: "google:gone", Mirror: &internal.Mirror{CalendarID: "primary", RemoteID: "gone"}}
	if err := c.DeleteEvent(context.Background(), ev); err != nil {
		t.Fatalf("expected deleting a gone event to succeed, got %v", err)
	}
}

func TestClientProfileAndCalendars(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	p, err := c.Profile(ctx)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Name != "Ada" || p.Email != "ada@example.com" {
		t.Fatalf("unexpected profile: %+v", p)
	}

	cals, err := c.Calendars(ctx)
	if err != nil {
		t.Fatalf("calendars: %v", err)
	}
	if len(cals) != 2 || !cals[0].Primary || cals[0].BackgroundColor != "#9fe1e7" {
		t.Fatalf("unexpected calendars: %+v", cals)
	}
	if cals[1].BackgroundColor != internal.DefaultRemoteColor {
		t.Fatalf("expected fallback colour, got %q", cals[1].BackgroundColor)
	}
}

func TestClientErrors(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()
	from, to := internal.MustParseISO("2024-01-01"), internal.MustParseISO("2024-12-31")

	fake.fail(http.StatusInternalServerError)
	_, err := c.Events(ctx, "primary", from, to)
	if !errors.Is(err, internal.ErrRemoteRequestFailed) {
		t.Fatalf("expected ErrRemoteRequestFailed, got %v", err)
	}
	if !c.Connected() {
		t.Fatalf("a generic failure must keep the session")
	}

	fake.fail(http.StatusUnauthorized)
	_, err = c.Events(ctx, "primary", from, to)
	if !errors.Is(err, internal.ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if c.Connected() {
		t.Fatalf("an expired session must be dropped")
	}
}
