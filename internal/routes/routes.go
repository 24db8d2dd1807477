package routes

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/healthai/internal/handlers"
	"github.com/yourorg/healthai/internal/middleware"
	"github.com/yourorg/healthai/internal/store"
)

func Register(app *fiber.App, db *sql.DB) {
	st := store.New(db)

	// ============================================================================
	// API PÚBLICA
	// ============================================================================
	api := app.Group("/api")

	// Health check (sin rate limiting)
	api.Get("/health", handlers.Health)

	// ============================================================================
	// AUTENTICACIÓN (con rate limiting estricto)
	// ============================================================================
	api.Post("/register", middleware.AuthRateLimiter(), handlers.Register)
	api.Post("/login", middleware.AuthRateLimiter(), handlers.Login)
	api.Post("/forgot-password", middleware.AuthRateLimiter(), handlers.ForgotPassword)
	api.Post("/reset-password", middleware.AuthRateLimiter(), handlers.ResetPassword)

	// ============================================================================
	// CONTACTO (público, mismo límite que autenticación)
	// ============================================================================
	api.Post("/contact", middleware.AuthRateLimiter(), handlers.Contact)

	// ============================================================================
	// ENDPOINTS PROTEGIDOS (requieren sesión activa)
	// ============================================================================
	protected := api.Group("", middleware.Protected(st), middleware.APIRateLimiter())

	protected.Post("/logout", handlers.Logout)

	// Perfil y preferencias
	protected.Get("/profile", handlers.Profile)
	protected.Put("/profile/theme", handlers.UpdateTheme)
	protected.Delete("/profile", handlers.DeleteAccount)
	protected.Post("/profile/2fa/setup", handlers.SetupTOTP)
	protected.Post("/profile/2fa/enable", handlers.EnableTOTP)

	// Historial y registros
	protected.Get("/records", handlers.History)
	// GET /api/records?page=1&page_size=10

	protected.Get("/records/export", handlers.ExportHistoryCSV)
	// GET /api/records/export - CSV completo del historial

	protected.Get("/predictions", handlers.Predictions)
	// GET /api/predictions?type=Diabetes

	protected.Get("/dashboard", handlers.Dashboard)
	// GET /api/dashboard - resumen de predicciones y últimas métricas

	// ============================================================================
	// PREDICCIÓN (rate limiting propio, la inferencia de imágenes es costosa)
	// ============================================================================
	predict := api.Group("/predict", middleware.Protected(st), middleware.InferenceRateLimiter())
	predict.Post("/diabetes", handlers.PredictDiabetes)
	predict.Post("/parkinsons", handlers.PredictParkinsons)
	predict.Post("/pneumonia", handlers.PredictPneumonia)

	// ============================================================================
	// CACHE (monitoreo en producción)
	// ============================================================================
	cacheGroup := api.Group("/cache", middleware.Protected(st))
	cacheGroup.Get("/stats", handlers.GetCacheStats)
	cacheGroup.Delete("/", handlers.ClearCache)
}
