package handlers

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yourorg/healthai/internal/auth"
	"github.com/yourorg/healthai/internal/inference"
	"github.com/yourorg/healthai/internal/store"
)

// package-level dependencies
var (
	setupOnce sync.Once    // Garantiza inicialización única
	setupMu   sync.RWMutex // Protege acceso a variables globales
	st        *store.Store
	validate  *validator.Validate

	modelsMu sync.RWMutex
	registry *inference.Registry
)

// Setup wires shared dependencies for handlers. Call this during app bootstrap.
func Setup(db *sql.DB) {
	setupOnce.Do(func() {
		setupMu.Lock()
		defer setupMu.Unlock()

		auth.InitJWT()
		st = store.New(db)
		validate = validator.New()
	})
}

// SetModelRegistry publishes the loaded inference models to the prediction
// handlers. A nil registry (or nil entries) makes the endpoints answer 503.
func SetModelRegistry(reg *inference.Registry) {
	modelsMu.Lock()
	registry = reg
	modelsMu.Unlock()
}

// getStore retorna el store de forma segura
func getStore() *store.Store {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return st
}

// getValidator retorna el validador de forma segura
func getValidator() *validator.Validate {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return validate
}

func getRegistry() *inference.Registry {
	modelsMu.RLock()
	defer modelsMu.RUnlock()
	return registry
}

// validationMessage flattens the first validator error into a readable string.
func validationMessage(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "email":
			return fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "min":
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		case "len":
			return fmt.Sprintf("%s must have length %s", fe.Field(), fe.Param())
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
	return "invalid request"
}
