// Package layout positions events on the month-by-day grid of the linear
// calendar.
package layout

import (
	"sort"
	"time"

	"github.com/guilherme-santos/linearcalendar/internal"
)

// Columns is the fixed width of a month row.
const Columns = 31

// Positioned is an event clipped to one month and assigned a lane.
type Positioned struct {
	Event    internal.Event `json:"event"`
	StartCol int            `json:"startCol"`
	EndCol   int            `json:"endCol"`
	Lane     int            `json:"lane"`
	IsStart  bool           `json:"isStart"`
	IsEnd    bool           `json:"isEnd"`
}

// Month lays out the events touching the given month.
//
// Events are sorted by start date, longer events first on equal starts,
// and packed greedily into the first lane whose last occupant ends before
// the event's start column. The packing is deterministic but not always
// minimal; lane numbers are only meaningful within a single month.
func Month(events []internal.Event, year int, month time.Month) []Positioned {
	days := internal.DaysInMonth(year, month)
	monthStart := internal.NewDate(year, month, 1)
	monthEnd := internal.NewDate(year, month, days)

	relevant := make([]internal.Event, 0, len(events))
	for _, e := range events {
		if e.Overlaps(monthStart, monthEnd) {
			relevant = append(relevant, e)
		}
	}
	if len(relevant) == 0 {
		return []Positioned{}
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		a, b := relevant[i], relevant[j]
		if c := a.Start.Compare(b.Start); c != 0 {
			return c < 0
		}
		return a.End.After(b.End)
	})

	positioned := make([]Positioned, 0, len(relevant))
	// laneEnd[i] is the last column occupied in lane i.
	var laneEnd []int

	for _, e := range relevant {
		startCol := 0
		if !e.Start.Before(monthStart) {
			startCol = e.Start.Day() - 1
		}
		endCol := days - 1
		if !e.End.After(monthEnd) {
			endCol = e.End.Day() - 1
		}

		lane := 0
		for lane < len(laneEnd) && laneEnd[lane] >= startCol {
			lane++
		}
		if lane == len(laneEnd) {
			laneEnd = append(laneEnd, endCol)
		} else {
			laneEnd[lane] = endCol
		}

		positioned = append(positioned, Positioned{
			Event:    e,
			StartCol: startCol,
			EndCol:   endCol,
			Lane:     lane,
			IsStart:  !e.Start.Before(monthStart),
			IsEnd:    !e.End.After(monthEnd),
		})
	}
	return positioned
}

// Lanes returns how many lanes the positioned events use.
func Lanes(positioned []Positioned) int {
	n := 0
	for _, p := range positioned {
		if p.Lane+1 > n {
			n = p.Lane + 1
		}
	}
	return n
}

// Year lays out all twelve months; index 0 is January.
func Year(events []internal.Event, year int) [12][]Positioned {
	var out [12][]Positioned
	for m := time.January; m <= time.December; m++ {
		out[m-1] = Month(events, year, m)
	}
	return out
}
