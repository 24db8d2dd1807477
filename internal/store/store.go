// Package store implements the credential and record stores on top of the
// single-file SQLite database. All user-facing invariants (uniqueness,
// bounded ranges, cascade deletes) are enforced here so handlers only deal
// with transport concerns.
package store

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Sentinel errors mapped to HTTP statuses at the handler boundary.
var (
	// ErrDuplicate marks a unique-constraint violation (username/email).
	ErrDuplicate = errors.New("store: already exists")
	// ErrNotFound covers unknown and expired alike, so callers cannot
	// distinguish the two cases.
	ErrNotFound = errors.New("store: not found")
	// ErrValidation marks bad input shape or range. Wrapped around the
	// concrete field error.
	ErrValidation = errors.New("store: invalid input")
)

// Store wraps the shared *sql.DB handle.
type Store struct {
	db *sql.DB
}

// New returns a Store over an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
