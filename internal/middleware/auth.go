package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/healthai/internal/auth"
	"github.com/yourorg/healthai/internal/store"
)

// Protected validates the bearer token and the server-side session behind
// it. Sessions idle for more than 30 minutes are rejected; every accepted
// request refreshes the session's last-seen timestamp.
func Protected(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired session",
			})
		}

		userID, err := st.TouchSession(claims.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Session expired. Please log in again.",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "db error",
			})
		}

		// el subject del token debe coincidir con el usuario de la sesión
		if sub, err := strconv.ParseInt(claims.Subject, 10, 64); err != nil || sub != userID {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired session",
			})
		}

		c.Locals("userID", userID)
		c.Locals("username", claims.Username)
		c.Locals("sessionID", claims.ID)
		return c.Next()
	}
}
