package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/healthai/internal/auth"
	"github.com/yourorg/healthai/internal/mailer"
	"github.com/yourorg/healthai/internal/models"
	"github.com/yourorg/healthai/internal/store"
)

// Register handles POST /api/register.
func Register(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if err := getValidator().Struct(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: validationMessage(err)})
	}

	userID, err := s.RegisterUser(req.Username, req.Password, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: err.Error()})
		}
		if errors.Is(err, store.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{Error: "username or email already exists"})
		}
		log.Printf("❌ Error registrando usuario: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	log.Printf("✅ Usuario registrado: id=%d, username=%s", userID, req.Username)

	sessionID, err := s.CreateSession(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to create session"})
	}
	token, expiresAt, err := auth.IssueToken(userID, req.Username, sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to sign token"})
	}
	c.Set("Cache-Control", "no-store")
	return c.Status(fiber.StatusCreated).JSON(models.LoginResponse{
		Token:     token,
		User:      models.UserDTO{ID: userID, Username: req.Username, Email: req.Email, Theme: "light"},
		ExpiresAt: expiresAt,
	})
}

// Login handles POST /api/login. Accounts with 2FA enabled must send a
// valid TOTP code in the same request; a missing or wrong code fails the
// login outright.
func Login(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "username and password required"})
	}

	user, err := s.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Printf("❌ Error consultando usuario: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "invalid credentials"})
	}

	if user.TOTPEnabled {
		code := strings.TrimSpace(req.TOTPCode)
		if code == "" || !auth.VerifyTOTPCode(code, user.TOTPSecret) {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "invalid two-factor code"})
		}
	}

	sessionID, err := s.CreateSession(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to create session"})
	}
	token, expiresAt, err := auth.IssueToken(user.ID, user.Username, sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to sign token"})
	}
	log.Printf("✅ Login exitoso: id=%d, username=%s", user.ID, user.Username)

	c.Set("Cache-Control", "no-store")
	return c.Status(fiber.StatusOK).JSON(models.LoginResponse{
		Token: token,
		User: models.UserDTO{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			Theme:       user.Theme,
			TOTPEnabled: user.TOTPEnabled,
		},
		ExpiresAt: expiresAt,
	})
}

// Logout handles POST /api/logout. It revokes the server-side session so
// the bearer token stops working before its expiry.
func Logout(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	sessionID, _ := c.Locals("sessionID").(string)
	if sessionID != "" {
		if err := s.DeleteSession(sessionID); err != nil {
			log.Printf("⚠️ Error cerrando sesión %s: %v", sessionID, err)
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "logged out"})
}

// ForgotPassword handles POST /api/forgot-password. The response is the
// same whether or not the email exists.
func ForgotPassword(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	var req models.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := getValidator().Struct(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: validationMessage(err)})
	}

	user, err := s.GetUserByEmail(req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("❌ Error consultando email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	if user != nil {
		token, err := s.CreateResetToken(user.ID)
		if err != nil {
			log.Printf("❌ Error creando token de reseteo: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
		}
		mailer.SendPasswordResetEmail(user.Email, token)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "If that email is registered, a reset link has been sent.",
	})
}

// ResetPassword handles POST /api/reset-password. Consuming a token is
// single-use; every open session of the user is revoked afterwards.
func ResetPassword(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	if err := getValidator().Struct(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: validationMessage(err)})
	}

	userID, err := s.ConsumeResetToken(strings.TrimSpace(req.Token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "invalid or expired token"})
		}
		log.Printf("❌ Error consumiendo token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to secure password"})
	}
	if err := s.UpdatePassword(userID, hash); err != nil {
		log.Printf("❌ Error actualizando password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	if err := s.DeleteUserSessions(userID); err != nil {
		log.Printf("⚠️ Error revocando sesiones de user %d: %v", userID, err)
	}
	log.Printf("✅ Password reseteado para user_id=%d", userID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "password updated"})
}
