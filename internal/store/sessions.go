package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionTimeout is the idle expiry window; a session not seen for longer
// than this is treated as gone.
const SessionTimeout = 30 * time.Minute

// CreateSession opens a server-side session for the user and returns its id.
func (s *Store) CreateSession(userID int64) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, user_id, created_at, last_seen) VALUES (?, ?, ?, ?)`,
		id, userID, now, now,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// TouchSession validates a session id, expires it when idle beyond
// SessionTimeout, and otherwise refreshes last_seen. Expired and unknown
// sessions are both ErrNotFound.
func (s *Store) TouchSession(sessionID string) (int64, error) {
	var userID int64
	var lastSeen time.Time
	err := s.db.QueryRow(
		`SELECT user_id, last_seen FROM sessions WHERE id = ?`, sessionID,
	).Scan(&userID, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if time.Since(lastSeen) > SessionTimeout {
		_, _ = s.db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
		return 0, ErrNotFound
	}
	if _, err := s.db.Exec(`UPDATE sessions SET last_seen = ? WHERE id = ?`, time.Now().UTC(), sessionID); err != nil {
		return 0, err
	}
	return userID, nil
}

// DeleteSession ends a single session (logout).
func (s *Store) DeleteSession(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

// DeleteUserSessions revokes every session of a user, e.g. after a
// password reset.
func (s *Store) DeleteUserSessions(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}
