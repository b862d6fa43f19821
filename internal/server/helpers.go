package server

import (
	"strings"

	"boardclient/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondErr writes err with the status its code maps to.
func respondErr(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// parseBody decodes the JSON body into out, answering 400 on failure.
// Callers should return nil when ok is false.
func parseBody(c *fiber.Ctx, out interface{}) bool {
	if err := c.BodyParser(out); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return false
	}
	return true
}

// respondApplied answers a gated mutation: 200 when it ran, 403 when the
// ownership gate suppressed it.
func respondApplied(c *fiber.Ctx, applied bool, denied string) error {
	if !applied {
		return respondErr(c, models.NewForbiddenError(denied))
	}
	return c.JSON(fiber.Map{"applied": true})
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
