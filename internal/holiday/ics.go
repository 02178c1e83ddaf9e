package holiday

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/guilherme-santos/linearcalendar/internal"
)

type entry struct {
	name  string
	kind  string
	start internal.Date
	// days is how many days the holiday lasts, at least 1.
	days int
	rule *rrule.RRule
}

// ICS serves holidays read from an iCalendar file. Yearly RRULEs are
// expanded per requested year.
type ICS struct {
	entries []entry
}

func OpenICS(path string) (*ICS, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("holiday: reading %s: %w", path, err)
	}
	return LoadICS(bytes.NewReader(b))
}

func LoadICS(r io.Reader) (*ICS, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("holiday: parsing calendar: %w", err)
	}

	var ics ICS
	for _, ve := range cal.Events() {
		e, ok := newEntry(ve)
		if ok {
			ics.entries = append(ics.entries, e)
		}
	}
	return &ics, nil
}

func newEntry(ve *ical.VEvent) (entry, bool) {
	start, ok := propDate(ve, ical.ComponentPropertyDtStart)
	if !ok {
		return entry{}, false
	}

	e := entry{start: start, days: 1, kind: TypePublic}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		e.name = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil && p.Value != "" {
		first, _, _ := strings.Cut(p.Value, ",")
		e.kind = strings.ToLower(strings.TrimSpace(first))
	}
	// DTEND is exclusive for all-day events.
	if end, ok := propDate(ve, ical.ComponentPropertyDtEnd); ok {
		if n := internal.DaysBetween(start, end); n > 1 {
			e.days = n
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		if r, err := rrule.StrToRRule(p.Value); err == nil {
			r.DTStart(start.Time)
			e.rule = r
		}
	}
	return e, true
}

// propDate reads the date part of a DTSTART/DTEND value.
func propDate(ve *ical.VEvent, prop ical.ComponentProperty) (internal.Date, bool) {
	p := ve.GetProperty(prop)
	if p == nil || len(p.Value) < 8 {
		return internal.Date{}, false
	}
	t, err := time.Parse("20060102", p.Value[:8])
	if err != nil {
		return internal.Date{}, false
	}
	return internal.NewDateFromTime(t), true
}

func (c *ICS) Holidays(year int) map[string]internal.Holiday {
	from, to := internal.YearRange(year)

	out := map[string]internal.Holiday{}
	add := func(e entry, start internal.Date) {
		for i := range e.days {
			d := start.AddDays(i)
			if d.Year() != year {
				continue
			}
			if _, ok := out[d.String()]; !ok {
				out[d.String()] = internal.Holiday{Date: d, Name: e.name, Type: e.kind}
			}
		}
	}

	for _, e := range c.entries {
		if e.rule == nil {
			add(e, e.start)
			continue
		}
		// Occurrences starting late in the previous year may spill over.
		for _, t := range e.rule.Between(from.AddDays(-e.days).Time, to.Time, true) {
			add(e, internal.NewDateFromTime(t))
		}
	}
	return out
}
