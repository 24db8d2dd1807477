package validation

import (
	"fmt"
	"math"
	"regexp"

	"github.com/yourorg/healthai/internal/models"
)

// FieldError representa un error de validación de un campo de entrada
type FieldError struct {
	Field   string
	Value   float64
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (valor: %g)", e.Field, e.Message, e.Value)
}

var (
	usernameRe  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRe     = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	timestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
)

// ValidateIntRange valida que un valor entero esté dentro de un rango cerrado
func ValidateIntRange(v, min, max int, fieldName string) error {
	if v < min || v > max {
		return &FieldError{
			Field:   fieldName,
			Value:   float64(v),
			Message: fmt.Sprintf("debe estar entre %d y %d", min, max),
		}
	}
	return nil
}

// ValidateFloatRange valida que un valor flotante esté dentro de un rango cerrado
func ValidateFloatRange(v, min, max float64, fieldName string) error {
	if math.IsNaN(v) {
		return &FieldError{Field: fieldName, Value: v, Message: "valor NaN no permitido"}
	}
	if math.IsInf(v, 0) {
		return &FieldError{Field: fieldName, Value: v, Message: "valor infinito no permitido"}
	}
	if v < min || v > max {
		return &FieldError{
			Field:   fieldName,
			Value:   v,
			Message: fmt.Sprintf("debe estar entre %g y %g", min, max),
		}
	}
	return nil
}

// ValidateBinary valida un flag 0/1
func ValidateBinary(v int, fieldName string) error {
	if v != 0 && v != 1 {
		return &FieldError{Field: fieldName, Value: float64(v), Message: "debe ser 0 o 1"}
	}
	return nil
}

// ValidatePatientRecord checks every bounded field of a risk-assessment
// submission against its closed range. A record failing any check must not
// reach the storage layer.
func ValidatePatientRecord(r *models.PatientRecord) error {
	checks := []error{
		ValidateIntRange(r.Age, 1, 13, "age"),
		ValidateFloatRange(r.BMI, 10, 100, "bmi"),
		ValidateBinary(r.HighBP, "high_bp"),
		ValidateBinary(r.HighChol, "high_chol"),
		ValidateBinary(r.CholCheck, "chol_check"),
		ValidateBinary(r.Smoker, "smoker"),
		ValidateBinary(r.Stroke, "stroke"),
		ValidateBinary(r.HeartDisease, "heart_disease"),
		ValidateBinary(r.PhysActivity, "phys_activity"),
		ValidateBinary(r.Fruits, "fruits"),
		ValidateBinary(r.Veggies, "veggies"),
		ValidateBinary(r.HvyAlcohol, "hvy_alcohol"),
		ValidateBinary(r.AnyHealthcare, "any_healthcare"),
		ValidateBinary(r.NoDocCost, "no_doc_cost"),
		ValidateIntRange(r.GenHealth, 1, 5, "gen_health"),
		ValidateIntRange(r.MentHealth, 0, 30, "ment_health"),
		ValidateIntRange(r.PhysHealth, 0, 30, "phys_health"),
		ValidateBinary(r.DiffWalk, "diff_walk"),
		ValidateBinary(r.Sex, "sex"),
		ValidateIntRange(r.Education, 1, 6, "education"),
		ValidateIntRange(r.Income, 1, 8, "income"),
		ValidateBinary(r.Prediction, "prediction"),
		ValidateFloatRange(r.Probability, 0, 1, "probability"),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// ValidateUsername enforces the 3-50 chars alphanumeric/underscore rule.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 50 {
		return &FieldError{Field: "username", Value: float64(len(username)), Message: "debe tener entre 3 y 50 caracteres"}
	}
	if !usernameRe.MatchString(username) {
		return &FieldError{Field: "username", Message: "solo letras, números y guión bajo"}
	}
	return nil
}

// ValidateEmail checks the email shape.
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return &FieldError{Field: "email", Message: "formato de email inválido"}
	}
	return nil
}

// ValidateTimestamp enforces the exact YYYY-MM-DD HH:MM:SS pattern used by
// the predictions log.
func ValidateTimestamp(ts string) error {
	if !timestampRe.MatchString(ts) {
		return &FieldError{Field: "timestamp", Message: "formato debe ser YYYY-MM-DD HH:MM:SS"}
	}
	return nil
}
