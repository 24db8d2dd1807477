package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/yourorg/healthai/internal/auth"
	"github.com/yourorg/healthai/internal/models"
	"github.com/yourorg/healthai/internal/validation"
)

// RegisterUser validates and creates a new account. The password is hashed
// with Argon2id before it touches the database; plaintext is never stored.
// Returns ErrDuplicate when username or email is already taken.
func (s *Store) RegisterUser(username, password, email string) (int64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || password == "" || email == "" {
		return 0, fmt.Errorf("%w: username, password and email are required", ErrValidation)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if len(password) < 8 {
		return 0, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, err
	}

	res, err := s.db.Exec(
		`INSERT INTO users (username, password_hash, email) VALUES (?, ?, ?)`,
		username, hash, email,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return res.LastInsertId()
}

// Authenticate looks up the user and verifies the password hash. Unknown
// username and wrong password both return (nil, nil) so callers cannot
// enumerate accounts.
func (s *Store) Authenticate(username, password string) (*models.User, error) {
	u, err := s.getUser(`SELECT id, username, password_hash, email, theme, totp_secret, totp_enabled, created_at
		FROM users WHERE username = ?`, strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !auth.VerifyPassword(password, u.PasswordHash) {
		return nil, nil
	}
	return u, nil
}

// GetUserByEmail returns ErrNotFound for unknown addresses.
func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	return s.getUser(`SELECT id, username, password_hash, email, theme, totp_secret, totp_enabled, created_at
		FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

// GetUserByID returns ErrNotFound for unknown ids.
func (s *Store) GetUserByID(id int64) (*models.User, error) {
	return s.getUser(`SELECT id, username, password_hash, email, theme, totp_secret, totp_enabled, created_at
		FROM users WHERE id = ?`, id)
}

func (s *Store) getUser(query string, arg interface{}) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(query, arg).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.Theme,
		&u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateTheme persists the theme preference ('light' or 'dark' only).
func (s *Store) UpdateTheme(userID int64, theme string) error {
	if theme != "light" && theme != "dark" {
		return fmt.Errorf("%w: theme must be 'light' or 'dark'", ErrValidation)
	}
	_, err := s.db.Exec(`UPDATE users SET theme = ? WHERE id = ?`, theme, userID)
	return err
}

// UpdatePassword replaces the stored hash. The caller is expected to have
// hashed the new password already.
func (s *Store) UpdatePassword(userID int64, passwordHash string) error {
	_, err := s.db.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	return err
}

// SetTOTPSecret stores a pending shared secret; 2FA stays disabled until
// EnableTOTP confirms a valid code.
func (s *Store) SetTOTPSecret(userID int64, secret string) error {
	_, err := s.db.Exec(`UPDATE users SET totp_secret = ?, totp_enabled = 0 WHERE id = ?`, secret, userID)
	return err
}

// EnableTOTP flips the second factor on for the stored secret.
func (s *Store) EnableTOTP(userID int64) error {
	_, err := s.db.Exec(`UPDATE users SET totp_enabled = 1 WHERE id = ? AND totp_secret != ''`, userID)
	return err
}

// DeleteUserCascade removes sessions, reset tokens, predictions and patient
// records belonging to the user, then the user row itself, as one atomic
// unit. SQLite does not enforce the declared foreign keys, so the cascade
// is explicit.
func (s *Store) DeleteUserCascade(userID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM sessions WHERE user_id = ?`,
		`DELETE FROM password_resets WHERE user_id = ?`,
		`DELETE FROM predictions WHERE user_id = ?`,
		`DELETE FROM patients WHERE user_id = ?`,
		`DELETE FROM users WHERE id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
