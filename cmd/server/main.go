package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/yourorg/healthai/internal/cache"
	appdb "github.com/yourorg/healthai/internal/db"
	"github.com/yourorg/healthai/internal/handlers"
	"github.com/yourorg/healthai/internal/inference"
	"github.com/yourorg/healthai/internal/middleware"
	"github.com/yourorg/healthai/internal/routes"
	"github.com/yourorg/healthai/internal/store"
)

func main() {
	_ = godotenv.Load()

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // radiografías en multipart
	})
	app.Use(logger.New())
	app.Use(middleware.GlobalRateLimiter())

	// ============================================================================
	// DB CONNECTION
	// ============================================================================
	db, err := appdb.Connect()
	if err != nil {
		log.Fatalf("❌ db connect error: %v", err)
	}
	if err := appdb.EnsureSchema(db); err != nil {
		log.Fatalf("❌ ensure schema error: %v", err)
	}
	log.Printf("✅ Base de datos lista en %s", appdb.Path())

	// Respaldo inicial antes de aceptar tráfico
	if err := appdb.Backup(false); err != nil {
		log.Printf("⚠️  Error en backup inicial: %v", err)
	}

	// ============================================================================
	// MODELOS DE INFERENCIA
	// ============================================================================
	modelsDir := os.Getenv("HEALTH_MODELS_DIR")
	if modelsDir == "" {
		modelsDir = "models"
	}
	registry, failures := inference.LoadRegistry(modelsDir)
	for file, err := range failures {
		log.Printf("⚠️  Modelo %s no disponible: %v", file, err)
	}
	if len(failures) == 0 {
		log.Println("✅ Modelos de inferencia cargados")
	}

	// ============================================================================
	// HANDLERS, CACHÉS Y RUTAS
	// ============================================================================
	cache.InitCaches()
	handlers.Setup(db)
	handlers.SetModelRegistry(registry)
	routes.Register(app, db)

	// ============================================================================
	// TRABAJO EN SEGUNDO PLANO
	// ============================================================================
	stopBackup := make(chan struct{})
	go appdb.StartBackupLoop(stopBackup)

	stopCleanup := make(chan struct{})
	go func() {
		st := store.New(db)
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := st.CleanupExpiredTokens(); err != nil {
					log.Printf("⚠️  Error limpiando tokens expirados: %v", err)
				} else if n > 0 {
					log.Printf("🧹 Tokens de reseteo expirados eliminados: %d", n)
				}
			case <-stopCleanup:
				return
			}
		}
	}()

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\n🛑 Señal de terminación recibida, cerrando servidor...")

		close(stopBackup)
		close(stopCleanup)
		cache.StopCaches()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Error cerrando servidor: %v", err)
		}
		if err := db.Close(); err != nil {
			log.Printf("⚠️  Error cerrando base de datos: %v", err)
		}

		log.Println("✅ Servidor cerrado correctamente")
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Servidor escuchando en :%s", port)
	log.Println("📍 Endpoints disponibles:")
	log.Println("   POST /api/register              - Crear cuenta")
	log.Println("   POST /api/login                 - Iniciar sesión (2FA si está habilitado)")
	log.Println("   POST /api/forgot-password       - Solicitar reseteo de password")
	log.Println("   POST /api/predict/diabetes      - Riesgo de diabetes (factores tabulares)")
	log.Println("   POST /api/predict/parkinsons    - Detección por características acústicas")
	log.Println("   POST /api/predict/pneumonia     - Detección por radiografía de tórax")
	log.Println("   GET  /api/records               - Historial paginado")
	log.Println("   GET  /api/dashboard             - Resumen de predicciones")
	log.Println("💡 Presiona Ctrl+C para detener")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
