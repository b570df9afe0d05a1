package journal

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one tracking run from App.Start to App.Stop.
type Session struct {
	ID        string     `json:"id"`
	CameraID  int        `json:"cameraId"`
	Seed      int64      `json:"seed"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// SessionRepository provides access to sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this journal.
func (j *Journal) Sessions() *SessionRepository {
	return &SessionRepository{db: j.db}
}

// Start records a new session and returns it with a fresh id.
func (r *SessionRepository) Start(cameraID int, seed int64) (*Session, error) {
	s := &Session{
		ID:        uuid.NewString(),
		CameraID:  cameraID,
		Seed:      seed,
		StartedAt: time.Now().UTC(),
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, camera_id, seed, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.CameraID, s.Seed, s.Status, s.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SetStatus stores the latest status string of a session.
func (r *SessionRepository) SetStatus(id, status string) error {
	return r.exec(`UPDATE sessions SET status = ? WHERE id = ?`, status, id)
}

// End marks a session finished.
func (r *SessionRepository) End(id string) error {
	return r.exec(`UPDATE sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL`, time.Now().UTC(), id)
}

func (r *SessionRepository) exec(query string, args ...any) error {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a session by its id.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	s := &Session{}
	var ended sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, camera_id, seed, status, started_at, ended_at FROM sessions WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.CameraID, &s.Seed, &s.Status, &s.StartedAt, &ended)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if ended.Valid {
		s.EndedAt = &ended.Time
	}
	return s, nil
}

// List returns all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, camera_id, seed, status, started_at, ended_at FROM sessions ORDER BY rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s := &Session{}
		var ended sql.NullTime
		if err := rows.Scan(&s.ID, &s.CameraID, &s.Seed, &s.Status, &s.StartedAt, &ended); err != nil {
			return nil, err
		}
		if ended.Valid {
			s.EndedAt = &ended.Time
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
