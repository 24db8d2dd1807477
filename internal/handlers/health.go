package handlers

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/healthai/internal/mailer"
)

// HealthResponse representa el estado de salud del sistema
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version,omitempty"`
}

// Health proporciona un health check completo del sistema
func Health(c *fiber.Ctx) error {
	services := make(map[string]string)
	overall := "healthy"

	// ============================================================================
	// CHECK: Base de Datos
	// ============================================================================
	s := getStore()
	if s != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.DB().PingContext(ctx); err != nil {
			services["database"] = "unhealthy: " + err.Error()
			overall = "degraded"
		} else {
			services["database"] = "healthy"
		}
	} else {
		services["database"] = "not_initialized"
		overall = "degraded"
	}

	// ============================================================================
	// CHECK: Modelos de inferencia
	// ============================================================================
	reg := getRegistry()
	check := func(name string, loaded bool) {
		if loaded {
			services[name] = "healthy"
		} else {
			services[name] = "unavailable"
			overall = "degraded"
		}
	}
	if reg != nil {
		check("model_diabetes", reg.Diabetes != nil)
		check("model_parkinsons", reg.Parkinsons != nil)
		check("model_pneumonia", reg.Pneumonia != nil)
	} else {
		services["models"] = "not_initialized"
		overall = "degraded"
	}

	// ============================================================================
	// CHECK: SMTP
	// ============================================================================
	// Sin credenciales el servidor funciona, solo no envía correos
	if mailer.Configured() {
		services["mailer"] = "configured"
	} else {
		services["mailer"] = "not_configured"
	}

	statusCode := fiber.StatusOK
	if overall == "degraded" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		Services:  services,
		Version:   os.Getenv("APP_VERSION"),
	})
}
