package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/yourorg/healthai/internal/auth"
)

// resetTokenTTL is the validity window of a password reset token.
const resetTokenTTL = time.Hour

// CreateResetToken invalidates any prior token for the user and issues a
// fresh URL-safe random one with a 1-hour expiry.
func (s *Store) CreateResetToken(userID int64) (string, error) {
	token, err := auth.GenerateResetToken()
	if err != nil {
		return "", err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM password_resets WHERE user_id = ?`, userID); err != nil {
		return "", err
	}
	expiresAt := time.Now().UTC().Add(resetTokenTTL)
	if _, err := tx.Exec(
		`INSERT INTO password_resets (user_id, token, expires_at) VALUES (?, ?, ?)`,
		userID, token, expiresAt,
	); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeResetToken resolves a token to its user and deletes it, making it
// single-use. Expired and unknown tokens are treated identically.
func (s *Store) ConsumeResetToken(token string) (int64, error) {
	var userID int64
	err := s.db.QueryRow(
		`SELECT user_id FROM password_resets WHERE token = ? AND expires_at > ?`,
		token, time.Now().UTC(),
	).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if _, err := s.db.Exec(`DELETE FROM password_resets WHERE token = ?`, token); err != nil {
		return 0, err
	}
	return userID, nil
}

// CleanupExpiredTokens purges rows whose expiry has passed and returns how
// many were removed. Intended to run periodically.
func (s *Store) CleanupExpiredTokens() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM password_resets WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
