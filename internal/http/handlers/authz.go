package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "vapordepot/internal/log"
	"vapordepot/internal/services"
)

func bearerToken(c *fiber.Ctx) string {
	h := c.Get("Authorization")
	if h == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// claims pulls the verified claims a middleware stored on the context.
func claims(c *fiber.Ctx) *services.Claims {
	cl, _ := c.Locals("claims").(*services.Claims)
	return cl
}

// RequireUser enforces a valid access token.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		cl, err := auth.Verify(tok)
		if err != nil {
			applog.Security(c, "auth.token.invalid", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		c.Locals("claims", cl)
		c.Locals("user_id", cl.UserID)
		return c.Next()
	}
}

// RequireAdmin enforces a valid access token carrying the admin role.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearerToken(c)
		if tok == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		cl, err := auth.Verify(tok)
		if err != nil || cl.Role != "admin" {
			applog.Security(c, "access.denied.admin", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
		c.Locals("claims", cl)
		c.Locals("user_id", cl.UserID)
		return c.Next()
	}
}

// AdminOrSyncSecret admits either an admin bearer token or the shared
// secret header used by scheduled sync callers.
func AdminOrSyncSecret(auth *services.AuthService, secret string) fiber.Handler {
	admin := RequireAdmin(auth)
	return func(c *fiber.Ctx) error {
		if secret != "" && c.Get("X-Sync-Secret") == secret {
			return c.Next()
		}
		return admin(c)
	}
}
