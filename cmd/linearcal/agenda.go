package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/guilherme-santos/linearcalendar/file"
	"github.com/guilherme-santos/linearcalendar/internal"
	"github.com/guilherme-santos/linearcalendar/internal/holiday"
	"github.com/guilherme-santos/linearcalendar/internal/layout"
	"github.com/guilherme-santos/linearcalendar/internal/syncer"
)

const localSource = "local"

var AgendaCommand = _agendaCommand{
	Name:        "agenda",
	Description: "Print the events of a year, month by month",
}

type _agendaCommand struct {
	Name        string
	Description string
}

func (s _agendaCommand) Run(ctx context.Context, cfg *file.Config, args []string) error {
	var (
		year, month int
		offline     bool
		calIDs      Strings
	)

	fs := newFlagSet(s.Name)
	fs.IntVar(&year, "year", 0, "year to print and display, the last displayed one by default")
	fs.IntVar(&month, "month", 0, "only print this month (1-12)")
	fs.BoolVar(&offline, "offline", false, "only print local events")
	fs.Var(&calIDs, "calendar-id", `calendar-id to print, "local" for local events`)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if month < 0 || month > 12 {
		return fmt.Errorf("invalid month %d", month)
	}

	st, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	if year != 0 {
		year = st.SetYear(year)
	} else {
		year = st.Year()
	}

	if !offline {
		googleCal, err := newGoogleClient(cfg)
		if err != nil {
			return fmt.Errorf("creating client: %v", err)
		}
		ok, err := resumeSession(ctx, cfg, googleCal)
		if err != nil {
			return err
		}
		if ok {
			if err := syncer.New(googleCal.Output, googleCal, st).Connect(ctx); err != nil {
				return err
			}
		}
	}

	holidays, err := loadHolidays(cfg)
	if err != nil {
		return err
	}

	events := st.AllEvents()
	if len(calIDs) > 0 {
		events = slices.DeleteFunc(events, func(e internal.Event) bool {
			src := e.CalendarID()
			if src == "" {
				src = localSource
			}
			return !slices.Contains(calIDs, src)
		})
	}

	visible := holiday.Visible(holidays.Holidays(year))
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)

	for m := time.January; m <= time.December; m++ {
		if month != 0 && int(m) != month {
			continue
		}

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 60
		tbl.Wrap = true

		for d := 1; d <= internal.DaysInMonth(year, m); d++ {
			if h, ok := visible[internal.FormatISO(year, m, d)]; ok {
				tbl.AddRow(red.Sprintf("%02d", d), "", red.Sprint(h.Name), h.Type)
			}
		}
		for _, p := range layout.Month(events, year, m) {
			tbl.AddRow(span(p), p.Lane, p.Event.Title, source(p.Event))
		}

		bold.Fprintf(color.Output, "%s %d\n", m, year)
		if len(tbl.Rows) == 0 {
			fmt.Fprintln(color.Output, "  no events")
			continue
		}
		fmt.Fprintln(color.Output, tbl)
	}
	return nil
}

// span prints the columns an event covers; arrows mark a continuation
// from or into the neighbouring month.
func span(p layout.Positioned) string {
	from, to := fmt.Sprintf("%02d", p.StartCol+1), fmt.Sprintf("%02d", p.EndCol+1)
	if !p.IsStart {
		from = "<" + from
	}
	if !p.IsEnd {
		to += ">"
	}
	if p.StartCol == p.EndCol && p.IsStart && p.IsEnd {
		return from
	}
	return from + "-" + to
}

func source(e internal.Event) string {
	if id := e.CalendarID(); id != "" {
		return id
	}
	return localSource
}
