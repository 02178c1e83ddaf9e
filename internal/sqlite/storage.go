package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/guilherme-santos/linearcalendar/internal"
)

const DriverName = "sqlite3"

// Storage persists locally owned events and settings. It implements
// store.Persister.
type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sql.DB) *Storage {
	s := &Storage{
		db: sqlx.NewDb(db, DriverName),
	}
	err := s.RunMigrations()
	if err != nil {
		panic(fmt.Sprintf("sqlite: running migrations: %v", err))
	}
	return s
}

func (s Storage) LoadEvents(ctx context.Context) ([]internal.Event, error) {
	var rows []Event

	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, title, start_date, end_date, color, description
		FROM events
		ORDER BY start_date, end_date DESC, created_at
	`)
	if err != nil {
		return nil, err
	}

	res := make([]internal.Event, len(rows))
	for i, r := range rows {
		res[i] = r.Convert()
	}
	return res, nil
}

func (s Storage) SaveEvent(ctx context.Context, ev internal.Event) error {
	if ev.IsMirrored() {
		return fmt.Errorf("sqlite: refusing to store mirrored event %s", ev.ID)
	}

	r := newEvent(ev)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO events (id, title, start_date, end_date, color, description)
		VALUES (:id, :title, :start_date, :end_date, :color, :description)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			color = excluded.color,
			description = excluded.description;
	`, r)
	return err
}

func (s Storage) DeleteEvent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM events WHERE id = ?
	`, id)
	return err
}

func (s Storage) Setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `
		SELECT value FROM settings WHERE key = ?
	`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s Storage) SaveSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?;
	`, key, value, value)
	return err
}
