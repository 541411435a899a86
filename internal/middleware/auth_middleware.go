package middleware

import (
	"strings"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"
	"fasalbajar-api/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the bearer token (cookie fallback for browser
// clients), loads the user and attaches identity to the request context.
// Any failure ends the request with 401 immediately.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
			}
			tokenString = parts[1]
		} else {
			tokenString = c.Cookies("token")
		}

		if tokenString == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		claims, err := token.ValidateAccessToken(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}

		if user.IsBlocked {
			return c.Status(401).JSON(fiber.Map{"error": "Account is blocked"})
		}

		c.Locals("user_id", user.ID.String())
		c.Locals("user_role", string(user.Role))
		c.Locals("user_name", user.FullName)

		return c.Next()
	}
}

// RequireRole allows only the listed roles past, assuming RequireAuth
// already ran.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole, ok := c.Locals("user_role").(string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No role found"})
		}

		for _, role := range roles {
			if userRole == string(role) {
				return c.Next()
			}
		}

		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(names, ", ") + " roles",
		})
	}
}
