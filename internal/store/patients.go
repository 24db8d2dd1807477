package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/yourorg/healthai/internal/models"
	"github.com/yourorg/healthai/internal/validation"
)

const patientColumns = `id, user_id, age, bmi, high_bp, high_chol, chol_check, smoker, stroke,
	heart_disease, phys_activity, fruits, veggies, hvy_alcohol, any_healthcare,
	no_doc_cost, gen_health, ment_health, phys_health, diff_walk, sex,
	education, income, prediction, probability, timestamp`

// SavePatientRecord range-checks every field and inserts a new immutable
// risk-assessment row. Nothing is written when any check fails.
func (s *Store) SavePatientRecord(r *models.PatientRecord) (int64, error) {
	if r.UserID <= 0 {
		return 0, fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	if err := validation.ValidatePatientRecord(r); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	res, err := s.db.Exec(`
		INSERT INTO patients (
			user_id, age, bmi, high_bp, high_chol, chol_check, smoker, stroke,
			heart_disease, phys_activity, fruits, veggies, hvy_alcohol,
			any_healthcare, no_doc_cost, gen_health, ment_health, phys_health,
			diff_walk, sex, education, income, prediction, probability
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.UserID, r.Age, r.BMI, r.HighBP, r.HighChol, r.CholCheck, r.Smoker,
		r.Stroke, r.HeartDisease, r.PhysActivity, r.Fruits, r.Veggies,
		r.HvyAlcohol, r.AnyHealthcare, r.NoDocCost, r.GenHealth, r.MentHealth,
		r.PhysHealth, r.DiffWalk, r.Sex, r.Education, r.Income,
		r.Prediction, r.Probability,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetPatientHistory returns every record of the user, newest first.
func (s *Store) GetPatientHistory(userID int64) ([]models.PatientRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+patientColumns+` FROM patients WHERE user_id = ? ORDER BY timestamp DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPatientRows(rows)
}

// PaginatePatientHistory returns one page of records plus the total count.
// The requested page is clamped to [1, ceil(total/pageSize)].
func (s *Store) PaginatePatientHistory(userID int64, page, pageSize int) ([]models.PatientRecord, int, int, error) {
	if pageSize <= 0 {
		return nil, 0, 0, fmt.Errorf("%w: page size must be positive", ErrValidation)
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM patients WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, 0, err
	}

	if page < 1 {
		page = 1
	}
	if totalPages := (total + pageSize - 1) / pageSize; totalPages > 0 && page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * pageSize
	rows, err := s.db.Query(
		`SELECT `+patientColumns+` FROM patients WHERE user_id = ?
		 ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`,
		userID, pageSize, offset,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	records, err := scanPatientRows(rows)
	if err != nil {
		return nil, 0, 0, err
	}
	return records, total, page, nil
}

// LatestPatientRecord returns the most recent record or ErrNotFound.
func (s *Store) LatestPatientRecord(userID int64) (*models.PatientRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+patientColumns+` FROM patients WHERE user_id = ?
		 ORDER BY timestamp DESC, id DESC LIMIT 1`,
		userID,
	)
	var r models.PatientRecord
	if err := scanPatient(row.Scan, &r); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func scanPatientRows(rows *sql.Rows) ([]models.PatientRecord, error) {
	records := []models.PatientRecord{}
	for rows.Next() {
		var r models.PatientRecord
		if err := scanPatient(rows.Scan, &r); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanPatient(scan func(dest ...interface{}) error, r *models.PatientRecord) error {
	return scan(
		&r.ID, &r.UserID, &r.Age, &r.BMI, &r.HighBP, &r.HighChol,
		&r.CholCheck, &r.Smoker, &r.Stroke, &r.HeartDisease, &r.PhysActivity,
		&r.Fruits, &r.Veggies, &r.HvyAlcohol, &r.AnyHealthcare, &r.NoDocCost,
		&r.GenHealth, &r.MentHealth, &r.PhysHealth, &r.DiffWalk, &r.Sex,
		&r.Education, &r.Income, &r.Prediction, &r.Probability, &r.Timestamp,
	)
}
