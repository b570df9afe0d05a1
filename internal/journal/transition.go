package journal

import (
	"database/sql"
	"time"
)

// Entry is one recorded interaction transition.
type Entry struct {
	ID        int64         `json:"id"`
	SessionID string        `json:"sessionId"`
	Kind      string        `json:"kind"`
	From      string        `json:"from,omitempty"`
	To        string        `json:"to,omitempty"`
	CardID    int           `json:"cardId"`
	Frame     time.Duration `json:"frame"` // source timestamp of the frame that caused it
	CreatedAt time.Time     `json:"createdAt"`
}

// TransitionRepository provides access to transitions.
type TransitionRepository struct {
	db *sql.DB
}

// Transitions returns the transition repository for this journal.
func (j *Journal) Transitions() *TransitionRepository {
	return &TransitionRepository{db: j.db}
}

// Append records e and fills in its id and creation time.
func (r *TransitionRepository) Append(e *Entry) error {
	e.CreatedAt = time.Now().UTC()

	res, err := r.db.Exec(
		`INSERT INTO transitions (session_id, kind, from_mode, to_mode, card_id, frame_us, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Kind, e.From, e.To, e.CardID, e.Frame.Microseconds(), e.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// ListBySession returns the most recent transitions of a session in the
// order they happened. limit <= 0 returns all of them.
func (r *TransitionRepository) ListBySession(sessionID string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, kind, from_mode, to_mode, card_id, frame_us, created_at FROM (
			SELECT * FROM transitions WHERE session_id = ? ORDER BY id DESC LIMIT ?
		 ) ORDER BY id`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		var frameUS int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &e.From, &e.To, &e.CardID, &frameUS, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Frame = time.Duration(frameUS) * time.Microsecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of transitions recorded for a session.
func (r *TransitionRepository) Count(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM transitions WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}
