package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yourorg/healthai/internal/validation"
)

// SaveContactSubmission stores an inbound contact-form message and returns
// the ticket reference handed back to the submitter.
func (s *Store) SaveContactSubmission(name, email, subject, message string) (string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)

	if name == "" || subject == "" || message == "" {
		return "", fmt.Errorf("%w: name, subject and message are required", ErrValidation)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	reference := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO contact_submissions (reference, name, email, subject, message)
		 VALUES (?, ?, ?, ?, ?)`,
		reference, name, email, subject, message,
	)
	if err != nil {
		return "", err
	}
	return reference, nil
}
