package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/healthai/internal/inference"
	"github.com/yourorg/healthai/internal/models"
	"github.com/yourorg/healthai/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

// Stored prediction types and the outcome labels shown to users.
const (
	TypeDiabetes   = "Diabetes"
	TypeParkinsons = "Parkinson's"
	TypePneumonia  = "Pneumonia"

	outcomeDiabetesPos   = "High Diabetes Risk"
	outcomeDiabetesNeg   = "No Diabetes"
	outcomeParkinsonsPos = "Parkinson's Detected"
	outcomeParkinsonsNeg = "No Parkinson's"
	outcomePneumoniaPos  = "Pneumonia Detected"
	outcomePneumoniaNeg  = "No Pneumonia"
)

// result builds the response payload from a raw model probability in [0,1].
// Confidence is reported relative to the chosen outcome.
func result(predictionType string, p float64, positive bool, posLabel, negLabel string) models.PredictionResult {
	pct := p * 100
	outcome := negLabel
	confidence := 100 - pct
	if positive {
		outcome = posLabel
		confidence = pct
	}
	return models.PredictionResult{
		PredictionType: predictionType,
		Outcome:        outcome,
		Positive:       positive,
		Probability:    pct,
		Confidence:     confidence,
	}
}

// logPrediction appends to the predictions log and drops the cached views
// the new row invalidates.
func logPrediction(s *store.Store, userID int64, res models.PredictionResult, now time.Time) error {
	_, err := s.SavePrediction(userID, res.PredictionType, res.Probability, res.Outcome, now.Format(timeLayout))
	if err != nil {
		return err
	}
	invalidateUserCaches(userID)
	return nil
}

// PredictDiabetes handles POST /api/predict/diabetes. The submitted risk
// factors are stored as a patient record together with the model's verdict.
func PredictDiabetes(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	reg := getRegistry()
	if reg == nil || reg.Diabetes == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: "diabetes model unavailable"})
	}
	userID, _ := c.Locals("userID").(int64)

	var req models.DiabetesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}

	now := time.Now()
	record := models.PatientRecord{
		UserID:        userID,
		Age:           req.Age,
		BMI:           req.BMI,
		HighBP:        req.HighBP,
		HighChol:      req.HighChol,
		CholCheck:     req.CholCheck,
		Smoker:        req.Smoker,
		Stroke:        req.Stroke,
		HeartDisease:  req.HeartDisease,
		PhysActivity:  req.PhysActivity,
		Fruits:        req.Fruits,
		Veggies:       req.Veggies,
		HvyAlcohol:    req.HvyAlcohol,
		AnyHealthcare: req.AnyHealthcare,
		NoDocCost:     req.NoDocCost,
		GenHealth:     req.GenHealth,
		MentHealth:    req.MentHealth,
		PhysHealth:    req.PhysHealth,
		DiffWalk:      req.DiffWalk,
		Sex:           req.Sex,
		Education:     req.Education,
		Income:        req.Income,
		Timestamp:     now,
	}

	p, positive, err := reg.Diabetes.Decide(record.FeatureVector())
	if err != nil {
		log.Printf("❌ Error en inferencia de diabetes: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "inference error"})
	}
	record.Probability = p
	if positive {
		record.Prediction = 1
	}

	if _, err := s.SavePatientRecord(&record); err != nil {
		if errors.Is(err, store.ErrValidation) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: err.Error()})
		}
		log.Printf("❌ Error guardando registro de paciente: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	res := result(TypeDiabetes, p, positive, outcomeDiabetesPos, outcomeDiabetesNeg)
	if err := logPrediction(s, userID, res, now); err != nil {
		log.Printf("❌ Error guardando predicción: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// PredictParkinsons handles POST /api/predict/parkinsons. The request
// carries 22 acoustic features in training order.
func PredictParkinsons(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	reg := getRegistry()
	if reg == nil || reg.Parkinsons == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: "parkinsons model unavailable"})
	}
	userID, _ := c.Locals("userID").(int64)

	var req models.ParkinsonsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	if err := getValidator().Struct(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: validationMessage(err)})
	}

	p, positive, err := reg.Parkinsons.Decide(req.Features)
	if err != nil {
		if errors.Is(err, inference.ErrDimension) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: err.Error()})
		}
		log.Printf("❌ Error en inferencia de parkinson: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "inference error"})
	}

	res := result(TypeParkinsons, p, positive, outcomeParkinsonsPos, outcomeParkinsonsNeg)
	if err := logPrediction(s, userID, res, time.Now()); err != nil {
		log.Printf("❌ Error guardando predicción: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// PredictPneumonia handles POST /api/predict/pneumonia. Expects a
// multipart form with an "image" file (JPEG or PNG chest X-ray).
func PredictPneumonia(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	reg := getRegistry()
	if reg == nil || reg.Pneumonia == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: "pneumonia model unavailable"})
	}
	userID, _ := c.Locals("userID").(int64)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "image file required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to read image"})
	}
	defer file.Close()

	features, err := inference.PreprocessImage(file)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "invalid image: " + err.Error()})
	}

	p, positive, err := reg.Pneumonia.Decide(features)
	if err != nil {
		log.Printf("❌ Error en inferencia de neumonía: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "inference error"})
	}

	res := result(TypePneumonia, p, positive, outcomePneumoniaPos, outcomePneumoniaNeg)
	if err := logPrediction(s, userID, res, time.Now()); err != nil {
		log.Printf("❌ Error guardando predicción: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	return c.Status(fiber.StatusOK).JSON(res)
}
