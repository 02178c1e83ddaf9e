package internal

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const DateFormat = "2006-01-02"

var ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

// Date is a calendar day with no time of day. It is always kept at
// midnight UTC so day arithmetic never crosses a DST boundary.
type Date struct {
	time.Time
}

func Today(now time.Time) Date {
	return NewDate(now.Year(), now.Month(), now.Day())
}

func NewDateFromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DaysInMonth returns 28 to 31.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatISO formats the triple as a zero-padded "YYYY-MM-DD".
func FormatISO(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// ParseISO parses a fixed-width "YYYY-MM-DD" string.
func ParseISO(s string) (Date, error) {
	if len(s) != len(DateFormat) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return NewDateFromTime(t), nil
}

// MustParseISO is ParseISO for literals known to be valid.
func MustParseISO(s string) Date {
	d, err := ParseISO(s)
	if err != nil {
		panic(err)
	}
	return d
}

func IsWeekend(year int, month time.Month, day int) bool {
	switch NewDate(year, month, day).Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	return false
}

// IsToday reports whether the triple is the calendar day of now, read in
// now's own location.
func IsToday(year int, month time.Month, day int, now time.Time) bool {
	y, m, d := now.Date()
	return y == year && m == month && d == day
}

func (d Date) AddDays(days int) Date {
	return NewDateFromTime(d.Time.AddDate(0, 0, days))
}

// DaysBetween returns the whole number of days from a to b, rounded.
func DaysBetween(a, b Date) int {
	return int(math.Round(b.Sub(a.Time).Hours() / 24))
}

func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool  { return d.Compare(other) == 0 }

// Midnight returns the start of the day in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

func (d *Date) Set(v string) error {
	parsed, err := ParseISO(v)
	if err == nil {
		*d = parsed
	}
	return err
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateFormat)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	return d.Set(string(b))
}

// MarshalJSON and UnmarshalJSON shadow the ones promoted from time.Time.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*d = Date{}
		return nil
	}
	return d.UnmarshalText([]byte(strings.Trim(s, `"`)))
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return d.Set(v)
	case []byte:
		return d.Set(string(v))
	case time.Time:
		*d = NewDateFromTime(v)
		return nil
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}
