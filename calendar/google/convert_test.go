package google

import (
	"slices"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/linearcalendar/internal"
)

func TestRemoteRoundTrip(t *testing.T) {
	req := internal.NewEvent{
		Title: "Day off",
		Start: internal.MustParseISO("2024-05-01"),
		End:   internal.MustParseISO("2024-05-01"),
	}
	g := newGoogleEvent(req, time.UTC)
	if g.Start.Date != "2024-05-01" || g.End.Date != "2024-05-02" {
		t.Fatalf("expected exclusive end on the wire, got %s..%s", g.Start.Date, g.End.Date)
	}
	if g.Start.TimeZone != "UTC" || g.End.TimeZone != "UTC" {
		t.Fatalf("expected time zone on both ends, got %q/%q", g.Start.TimeZone, g.End.TimeZone)
	}

	g.Id = "abc"
	e, ok := newEvent(g, "primary")
	if !ok {
		t.Fatalf("expected an event")
	}
	if e.Start.String() != "2024-05-01" || e.End.String() != "2024-05-01" {
		t.Fatalf("expected inclusive range back, got %s..%s", e.Start, e.End)
	}
	if e.ID != "google:abc" || e.Mirror == nil || e.Mirror.CalendarID != "primary" || e.Mirror.RemoteID != "abc" {
		t.Fatalf("unexpected origin tag: %+v", e)
	}
}

func TestNewEvent(t *testing.T) {
	tests := []struct {
		name       string
		item       *calendar.Event
		ok         bool
		start, end string
		title      string
		color      string
	}{
		{
			name:  "all day",
			item:  &calendar.Event{Id: "1", Summary: "Trip", ColorId: "11", Start: &calendar.EventDateTime{Date: "2024-06-01"}, End: &calendar.EventDateTime{Date: "2024-06-04"}},
			ok:    true,
			start: "2024-06-01", end: "2024-06-03", title: "Trip", color: "#d50000",
		},
		{
			name:  "timed",
			item:  &calendar.Event{Id: "2", Start: &calendar.EventDateTime{DateTime: "2024-06-01T22:00:00-06:00"}, End: &calendar.EventDateTime{DateTime: "2024-06-02T01:00:00-06:00"}},
			ok:    true,
			start: "2024-06-01", end: "2024-06-02", title: "(No title)", color: internal.DefaultRemoteColor,
		},
		{
			name: "no dates",
			item: &calendar.Event{Id: "3", Start: &calendar.EventDateTime{}},
		},
		{
			name: "no start",
			item: &calendar.Event{Id: "4"},
		},
	}
	for _, tt := range tests {
		e, ok := newEvent(tt.item, "work")
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v, got %v", tt.name, tt.ok, ok)
		}
		if !ok {
			continue
		}
		if e.Start.String() != tt.start || e.End.String() != tt.end || e.Title != tt.title || e.Color != tt.color {
			t.Fatalf("%s: unexpected event %+v", tt.name, e)
		}
	}
}

func TestNewGooglePatchSendsBothDates(t *testing.T) {
	current := internal.Event{
		ID:     "google:x",
		Start:  internal.MustParseISO("2024-06-01"),
		End:    internal.MustParseISO("2024-06-03"),
		Mirror: &internal.Mirror{CalendarID: "primary", RemoteID: "x"},
	}

	end := internal.MustParseISO("2024-06-10")
	g := newGooglePatch(current, internal.EventPatch{End: &end}, time.UTC)
	if g.Start == nil || g.Start.Date != "2024-06-01" {
		t.Fatalf("expected current start to be sent, got %+v", g.Start)
	}
	if g.End == nil || g.End.Date != "2024-06-11" {
		t.Fatalf("expected exclusive end 2024-06-11, got %+v", g.End)
	}
	if g.Summary != "" || len(g.ForceSendFields) != 0 {
		t.Fatalf("expected only dates in the patch, got %+v", g)
	}

	empty := ""
	g = newGooglePatch(current, internal.EventPatch{Description: &empty}, time.UTC)
	if g.Start != nil || g.End != nil {
		t.Fatalf("expected no dates without a range change")
	}
	if !slices.Contains(g.ForceSendFields, "Description") {
		t.Fatalf("expected an empty description to be sent explicitly")
	}
}
