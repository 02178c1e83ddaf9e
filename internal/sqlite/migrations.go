package sqlite

func (s Storage) RunMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id VARCHAR NOT NULL PRIMARY KEY,
		title VARCHAR NOT NULL DEFAULT '',
		start_date VARCHAR NOT NULL,
		end_date VARCHAR NOT NULL,
		color VARCHAR NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS events_start_date ON events (start_date)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}
