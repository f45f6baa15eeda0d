package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "vapordepot/internal/log"
	"vapordepot/internal/services"
	"vapordepot/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if _, ok := validate.Email(in.Email); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid email"})
	}
	if !validate.Password(in.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password too weak"})
	}

	user, pair, err := h.Auth.Register(in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already in use"})
		case errors.Is(err, services.ErrUnderage):
			applog.Security(c, "auth.register.underage", map[string]any{"email": in.Email})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Minimum age requirement not met"})
		}
		applog.Error(c, "auth.register.fail", err, nil)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Registration failed"})
	}
	applog.Audit(c, "auth.register", map[string]any{"email": user.Email})
	return c.JSON(fiber.Map{
		"user":         fiber.Map{"id": user.ID, "email": user.Email, "name": user.Name, "role": user.Role},
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	user, pair, err := h.Auth.Login(in.Email, in.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}
	applog.Audit(c, "auth.login.success", map[string]any{"email": user.Email})
	return c.JSON(fiber.Map{
		"user":         fiber.Map{"id": user.ID, "email": user.Email, "name": user.Name, "role": user.Role},
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.BodyParser(&in); err != nil || in.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing refresh token"})
	}
	pair, err := h.Auth.Refresh(in.RefreshToken)
	if err != nil {
		applog.Security(c, "auth.refresh.fail", nil)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid refresh token"})
	}
	return c.JSON(pair)
}
