package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/guilherme-santos/linearcalendar/calendar/google"
	"github.com/guilherme-santos/linearcalendar/file"
	"github.com/guilherme-santos/linearcalendar/internal/holiday"
	"github.com/guilherme-santos/linearcalendar/internal/sqlite"
	"github.com/guilherme-santos/linearcalendar/internal/store"
)

type Strings []string

func (i *Strings) String() string {
	return strings.Join(*i, ", ")
}

func (i *Strings) Set(value string) error {
	*i = append(*i, value)
	return nil
}

// openStore restores the store from the configured database. The returned
// func closes the database.
func openStore(ctx context.Context, cfg *file.Config) (*store.Store, func() error, error) {
	db, err := sql.Open(sqlite.DriverName, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, sqlite.NewStorage(db))
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("restoring state: %v", err)
	}
	return st, db.Close, nil
}

func newGoogleClient(cfg *file.Config) (*google.Client, error) {
	credFile, err := os.ReadFile(cfg.Google.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	googleCal, err := google.NewClient(credFile, loc)
	if err != nil {
		return nil, err
	}
	googleCal.Verbose = cfg.Verbose
	return googleCal, nil
}

// resumeSession starts a Google session from the stored token. It reports
// false when no token has been configured yet.
func resumeSession(ctx context.Context, cfg *file.Config, googleCal *google.Client) (bool, error) {
	tok, err := file.ReadToken(cfg.Google.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading token file: %v", err)
	}
	if err := googleCal.Connect(ctx, tok); err != nil {
		return false, err
	}
	return true, nil
}

func loadHolidays(cfg *file.Config) (holiday.Provider, error) {
	if cfg.HolidaysFile == "" {
		return holiday.Static{}, nil
	}
	ics, err := holiday.OpenICS(cfg.HolidaysFile)
	if err != nil {
		return nil, fmt.Errorf("loading holidays: %v", err)
	}
	return ics, nil
}
