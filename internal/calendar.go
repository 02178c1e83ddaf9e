package internal

import "time"

// CalendarInfo describes a remote calendar. Enabled is local state only.
type CalendarInfo struct {
	ID              string `json:"id"`
	Summary         string `json:"summary"`
	BackgroundColor string `json:"backgroundColor"`
	Primary         bool   `json:"primary,omitempty"`
	Enabled         bool   `json:"enabled"`
}

func (c CalendarInfo) String() string {
	return c.ID
}

// PrimaryCalendarID is where new events go while connected.
const PrimaryCalendarID = "primary"

// Profile is the signed-in remote user.
type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

type Holiday struct {
	Date Date   `json:"date"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type ModalMode string

const (
	ModalCreate ModalMode = "create"
	ModalEdit   ModalMode = "edit"
)

type ModalState struct {
	IsOpen      bool      `json:"isOpen"`
	Mode        ModalMode `json:"mode"`
	EventID     string    `json:"eventId,omitempty"`
	PrefillDate *Date     `json:"prefillDate,omitempty"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Supported year range for navigation.
const (
	MinYear = 2000
	MaxYear = 2049
)

func ClampYear(year int) int {
	return max(MinYear, min(MaxYear, year))
}

// YearRange returns the first and last day of year.
func YearRange(year int) (Date, Date) {
	return NewDate(year, time.January, 1), NewDate(year, time.December, 31)
}
