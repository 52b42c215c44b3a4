package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Recordings table - one row per captured landmark session
		`CREATE TABLE IF NOT EXISTS recordings (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			stopped_at DATETIME,
			frames INTEGER NOT NULL DEFAULT 0
		)`,

		// Recording frames table - wire-format frames with their offset from the start
		`CREATE TABLE IF NOT EXISTS recording_frames (
			recording_id TEXT NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			offset_ms INTEGER NOT NULL,
			data TEXT NOT NULL,
			PRIMARY KEY (recording_id, seq)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recordings_started_at ON recordings(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
