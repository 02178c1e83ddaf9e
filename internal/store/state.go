package store

import (
	"context"
	"slices"
	"strconv"

	"github.com/guilherme-santos/linearcalendar/internal"
)

func (s *Store) Modal() internal.ModalState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modal
}

// OpenCreateModal opens the editor for a new event, optionally prefilled
// with the day that was clicked.
func (s *Store) OpenCreateModal(prefill *internal.Date) {
	var p *internal.Date
	if prefill != nil {
		d := *prefill
		p = &d
	}

	s.mu.Lock()
	s.modal = internal.ModalState{IsOpen: true, Mode: internal.ModalCreate, PrefillDate: p}
	s.mu.Unlock()

	s.notify(ModalChanged)
}

func (s *Store) OpenEditModal(eventID string) {
	s.mu.Lock()
	s.modal = internal.ModalState{IsOpen: true, Mode: internal.ModalEdit, EventID: eventID}
	s.mu.Unlock()

	s.notify(ModalChanged)
}

func (s *Store) CloseModal() {
	s.mu.Lock()
	s.modal = internal.ModalState{Mode: internal.ModalCreate}
	s.mu.Unlock()

	s.notify(ModalChanged)
}

func (s *Store) Theme() internal.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *Store) ToggleTheme() internal.Theme {
	s.mu.Lock()
	if s.theme == internal.ThemeDark {
		s.theme = internal.ThemeLight
	} else {
		s.theme = internal.ThemeDark
	}
	theme := s.theme
	s.persist(func(ctx context.Context, p Persister) error {
		return p.SaveSetting(ctx, SettingTheme, string(theme))
	})
	s.mu.Unlock()

	s.notify(ThemeChanged)
	return theme
}

func (s *Store) Year() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.year
}

// SetYear selects year, clamped to the supported range, and returns it.
func (s *Store) SetYear(year int) int {
	year = internal.ClampYear(year)

	s.mu.Lock()
	changed := s.year != year
	s.year = year
	if changed {
		s.persist(func(ctx context.Context, p Persister) error {
			return p.SaveSetting(ctx, SettingYear, strconv.Itoa(year))
		})
	}
	s.mu.Unlock()

	if changed {
		s.notify(YearChanged)
	}
	return year
}

func (s *Store) PrevYear() int {
	return s.SetYear(s.Year() - 1)
}

func (s *Store) NextYear() int {
	return s.SetYear(s.Year() + 1)
}

func (s *Store) JumpToToday() int {
	return s.SetYear(s.now().Year())
}

// Today is the current day according to the store's clock.
func (s *Store) Today() internal.Date {
	return internal.Today(s.now())
}

func (s *Store) Calendars() []internal.CalendarInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.calendars)
}

func (s *Store) SetCalendars(cals []internal.CalendarInfo) {
	s.mu.Lock()
	s.calendars = slices.Clone(cals)
	s.mu.Unlock()

	s.notify(CalendarsChanged)
}

// ToggleCalendar flips the enabled flag of id and reports the new value.
func (s *Store) ToggleCalendar(id string) (enabled, ok bool) {
	s.mu.Lock()
	i := slices.IndexFunc(s.calendars, func(c internal.CalendarInfo) bool { return c.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return false, false
	}
	s.calendars[i].Enabled = !s.calendars[i].Enabled
	enabled = s.calendars[i].Enabled
	s.mu.Unlock()

	s.notify(CalendarsChanged)
	return enabled, true
}

func (s *Store) EnabledCalendars() []internal.CalendarInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var enabled []internal.CalendarInfo
	for _, c := range s.calendars {
		if c.Enabled {
			enabled = append(enabled, c)
		}
	}
	return enabled
}

func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// SetConnected records the session state. The "was connected" flag follows
// it and is persisted so the next start can reconnect.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	s.connected = connected
	if s.wasConn != connected {
		s.persist(func(ctx context.Context, p Persister) error {
			return p.SaveSetting(ctx, SettingWasConnected, strconv.FormatBool(connected))
		})
	}
	s.wasConn = connected
	s.mu.Unlock()

	s.notify(SessionChanged)
}

// WasConnected reports whether the last run ended with a live session.
func (s *Store) WasConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wasConn
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()

	s.notify(SessionChanged)
}

func (s *Store) Profile() *internal.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *Store) SetProfile(p *internal.Profile) {
	var cp *internal.Profile
	if p != nil {
		v := *p
		cp = &v
	}

	s.mu.Lock()
	s.profile = cp
	s.mu.Unlock()

	s.notify(SessionChanged)
}
