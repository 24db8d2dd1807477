package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/healthai/internal/mailer"
	"github.com/yourorg/healthai/internal/models"
)

// Contact handles POST /api/contact. Submissions are stored first; the
// support notification email is best-effort.
func Contact(c *fiber.Ctx) error {
	s := getStore()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	var req models.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if err := getValidator().Struct(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: validationMessage(err)})
	}

	reference, err := s.SaveContactSubmission(req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		log.Printf("❌ Error guardando mensaje de contacto: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	mailer.SendContactNotification(req.Name, req.Email, req.Subject, req.Message, reference)

	log.Printf("📨 Mensaje de contacto recibido: ref=%s", reference)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reference": reference,
		"message":   "Thank you for reaching out. We will get back to you soon.",
	})
}
