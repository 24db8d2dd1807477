package store

import (
	"fmt"
	"strings"

	"github.com/yourorg/healthai/internal/models"
	"github.com/yourorg/healthai/internal/validation"
)

// SavePrediction appends one row to the predictions log. Probability is a
// percentage in [0,100]; the timestamp must match YYYY-MM-DD HH:MM:SS
// exactly.
func (s *Store) SavePrediction(userID int64, predictionType string, probability float64, outcome, timestamp string) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	if strings.TrimSpace(predictionType) == "" {
		return 0, fmt.Errorf("%w: prediction type must not be empty", ErrValidation)
	}
	if probability < 0 || probability > 100 {
		return 0, fmt.Errorf("%w: probability must be between 0 and 100", ErrValidation)
	}
	if strings.TrimSpace(outcome) == "" {
		return 0, fmt.Errorf("%w: outcome must not be empty", ErrValidation)
	}
	if err := validation.ValidateTimestamp(timestamp); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	res, err := s.db.Exec(
		`INSERT INTO predictions (user_id, prediction_type, probability, outcome, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, predictionType, probability, outcome, timestamp,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetPredictions returns the user's prediction log, newest first, optionally
// filtered by exact prediction type.
func (s *Store) GetPredictions(userID int64, predictionType string) ([]models.Prediction, error) {
	query := `SELECT id, user_id, prediction_type, probability, outcome, timestamp
		FROM predictions WHERE user_id = ?`
	args := []interface{}{userID}
	if predictionType != "" {
		query += ` AND prediction_type = ?`
		args = append(args, predictionType)
	}
	query += ` ORDER BY timestamp DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := []models.Prediction{}
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(&p.ID, &p.UserID, &p.PredictionType, &p.Probability, &p.Outcome, &p.Timestamp); err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// CountPredictionsByType aggregates the log for the dashboard summary.
func (s *Store) CountPredictionsByType(userID int64) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT prediction_type, COUNT(*) FROM predictions WHERE user_id = ? GROUP BY prediction_type`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var ptype string
		var n int
		if err := rows.Scan(&ptype, &n); err != nil {
			return nil, err
		}
		counts[ptype] = n
	}
	return counts, rows.Err()
}
