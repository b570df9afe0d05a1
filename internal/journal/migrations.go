package journal

// runMigrations creates the journal schema.
func (j *Journal) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per App.Start
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			camera_id INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Transitions table - interaction state changes within a session
		`CREATE TABLE IF NOT EXISTS transitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			kind TEXT NOT NULL CHECK(kind IN ('mode', 'select', 'release')),
			from_mode TEXT NOT NULL DEFAULT '',
			to_mode TEXT NOT NULL DEFAULT '',
			card_id INTEGER NOT NULL DEFAULT -1,
			frame_us INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transitions_session_id ON transitions(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := j.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
