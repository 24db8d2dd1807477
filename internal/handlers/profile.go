package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/healthai/internal/auth"
	"github.com/yourorg/healthai/internal/cache"
	"github.com/yourorg/healthai/internal/db"
	"github.com/yourorg/healthai/internal/models"
	"github.com/yourorg/healthai/internal/store"
)

// Profile handles GET /api/profile.
func Profile(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	userID, _ := c.Locals("userID").(int64)

	user, err := s.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "account no longer exists"})
		}
		log.Printf("❌ Error consultando perfil: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	return c.Status(fiber.StatusOK).JSON(models.UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Theme:       user.Theme,
		TOTPEnabled: user.TOTPEnabled,
	})
}

// UpdateTheme handles PUT /api/profile/theme.
func UpdateTheme(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	userID, _ := c.Locals("userID").(int64)

	var req models.ThemeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	if err := getValidator().Struct(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: validationMessage(err)})
	}
	if err := s.UpdateTheme(userID, req.Theme); err != nil {
		log.Printf("❌ Error actualizando tema: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"theme": req.Theme})
}

// SetupTOTP handles POST /api/profile/2fa/setup. It stores a fresh shared
// secret (2FA stays disabled until EnableTOTP confirms one code).
func SetupTOTP(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	userID, _ := c.Locals("userID").(int64)
	username, _ := c.Locals("username").(string)

	secret, uri, err := auth.GenerateTOTPSecret(username)
	if err != nil {
		log.Printf("❌ Error generando secreto TOTP: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to generate secret"})
	}
	if err := s.SetTOTPSecret(userID, secret); err != nil {
		log.Printf("❌ Error guardando secreto TOTP: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	c.Set("Cache-Control", "no-store")
	return c.Status(fiber.StatusOK).JSON(models.TOTPSetupResponse{Secret: secret, URI: uri})
}

// EnableTOTP handles POST /api/profile/2fa/enable. One valid code against
// the pending secret turns 2FA on.
func EnableTOTP(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	userID, _ := c.Locals("userID").(int64)

	var req models.TOTPEnableRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	if err := getValidator().Struct(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: validationMessage(err)})
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	if user.TOTPSecret == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "2fa setup has not been started"})
	}
	if !auth.VerifyTOTPCode(strings.TrimSpace(req.Code), user.TOTPSecret) {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "invalid two-factor code"})
	}
	if err := s.EnableTOTP(userID); err != nil {
		log.Printf("❌ Error habilitando 2FA: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	log.Printf("✅ 2FA habilitado para user_id=%d", userID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "two-factor authentication enabled"})
}

// DeleteAccount handles DELETE /api/profile. The user's records,
// predictions, sessions and reset tokens go with the account.
func DeleteAccount(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	userID, _ := c.Locals("userID").(int64)

	if err := s.DeleteUserCascade(userID); err != nil {
		log.Printf("❌ Error eliminando cuenta %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	invalidateUserCaches(userID)
	// Respaldo inmediato tras una eliminación irreversible
	go func() {
		if err := db.Backup(true); err != nil {
			log.Printf("⚠️ Error en backup post-eliminación: %v", err)
		}
	}()

	log.Printf("🗑️ Cuenta eliminada: user_id=%d", userID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "account deleted"})
}

// invalidateUserCaches drops every cached view derived from the user's data.
func invalidateUserCaches(userID int64) {
	if cache.HistoryCache != nil {
		cache.HistoryCache.DeletePrefix(fmt.Sprintf("history:%d:", userID))
	}
	if cache.DashboardCache != nil {
		cache.DashboardCache.Delete(fmt.Sprintf("dashboard:%d", userID))
	}
}
