package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// currentUserID reads the id the auth middleware put in the context.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.NewError(401, "Unauthorized")
	}
	return uuid.Parse(raw)
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}
