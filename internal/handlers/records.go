package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/healthai/internal/cache"
	"github.com/yourorg/healthai/internal/models"
	"github.com/yourorg/healthai/internal/store"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// History handles GET /api/records?page=N&page_size=M. Pages are cached
// per user for five minutes and invalidated when new records arrive.
func History(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	userID, _ := c.Locals("userID").(int64)

	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", defaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{
			Error: fmt.Sprintf("page_size must be between 1 and %d", maxPageSize),
		})
	}

	key := fmt.Sprintf("history:%d:p%d:s%d", userID, page, pageSize)
	if cache.HistoryCache != nil {
		if cached, found := cache.HistoryCache.Get(key); found {
			if resp, ok := cached.(models.PatientHistoryResponse); ok {
				c.Set("X-Cache", "HIT")
				return c.Status(fiber.StatusOK).JSON(resp)
			}
		}
	}

	records, total, page, err := s.PaginatePatientHistory(userID, page, pageSize)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: err.Error()})
		}
		log.Printf("❌ Error consultando historial: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	resp := models.PatientHistoryResponse{
		Records:    records,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	if cache.HistoryCache != nil {
		cache.HistoryCache.Set(key, resp)
	}
	c.Set("X-Cache", "MISS")
	return c.Status(fiber.StatusOK).JSON(resp)
}

// ExportHistoryCSV handles GET /api/records/export. It streams the full
// history (no pagination) as a CSV attachment.
func ExportHistoryCSV(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	userID, _ := c.Locals("userID").(int64)

	records, err := s.GetPatientHistory(userID)
	if err != nil {
		log.Printf("❌ Error exportando historial: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"id", "timestamp", "age", "bmi", "high_bp", "high_chol", "chol_check",
		"smoker", "stroke", "heart_disease", "phys_activity", "fruits",
		"veggies", "hvy_alcohol", "any_healthcare", "no_doc_cost",
		"gen_health", "ment_health", "phys_health", "diff_walk", "sex",
		"education", "income", "prediction", "probability",
	}
	if err := w.Write(header); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "csv error"})
	}
	for i := range records {
		r := &records[i]
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Timestamp.Format("2006-01-02 15:04:05"),
			strconv.Itoa(r.Age),
			strconv.FormatFloat(r.BMI, 'f', 2, 64),
			strconv.Itoa(r.HighBP), strconv.Itoa(r.HighChol),
			strconv.Itoa(r.CholCheck), strconv.Itoa(r.Smoker),
			strconv.Itoa(r.Stroke), strconv.Itoa(r.HeartDisease),
			strconv.Itoa(r.PhysActivity), strconv.Itoa(r.Fruits),
			strconv.Itoa(r.Veggies), strconv.Itoa(r.HvyAlcohol),
			strconv.Itoa(r.AnyHealthcare), strconv.Itoa(r.NoDocCost),
			strconv.Itoa(r.GenHealth), strconv.Itoa(r.MentHealth),
			strconv.Itoa(r.PhysHealth), strconv.Itoa(r.DiffWalk),
			strconv.Itoa(r.Sex), strconv.Itoa(r.Education),
			strconv.Itoa(r.Income), strconv.Itoa(r.Prediction),
			strconv.FormatFloat(r.Probability, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "csv error"})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "csv error"})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="health_history.csv"`)
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

// Predictions handles GET /api/predictions?type=T. The optional type filter
// matches the stored prediction_type exactly.
func Predictions(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	userID, _ := c.Locals("userID").(int64)

	preds, err := s.GetPredictions(userID, c.Query("type"))
	if err != nil {
		log.Printf("❌ Error consultando predicciones: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"predictions": preds,
		"count":       len(preds),
	})
}

// Dashboard handles GET /api/dashboard. The summary combines the
// prediction log counts with the latest stored risk factors.
func Dashboard(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	userID, _ := c.Locals("userID").(int64)

	key := fmt.Sprintf("dashboard:%d", userID)
	if cache.DashboardCache != nil {
		if cached, found := cache.DashboardCache.Get(key); found {
			if resp, ok := cached.(models.DashboardResponse); ok {
				c.Set("X-Cache", "HIT")
				return c.Status(fiber.StatusOK).JSON(resp)
			}
		}
	}

	counts, err := s.CountPredictionsByType(userID)
	if err != nil {
		log.Printf("❌ Error consultando conteos: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	total := 0
	for _, n := range counts {
		total += n
	}

	resp := models.DashboardResponse{
		TotalPredictions: total,
		ByType:           counts,
	}
	latest, err := s.LatestPatientRecord(userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("❌ Error consultando último registro: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	if latest != nil {
		bmi := latest.BMI
		gen := latest.GenHealth
		resp.LatestBMI = &bmi
		resp.LatestGenHealth = &gen
	}

	if cache.DashboardCache != nil {
		cache.DashboardCache.Set(key, resp)
	}
	c.Set("X-Cache", "MISS")
	return c.Status(fiber.StatusOK).JSON(resp)
}
