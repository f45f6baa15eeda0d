package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	applog "vapordepot/internal/log"
	"vapordepot/internal/square"
)

type WebhookHandler struct {
	SignatureKey string
}

// POST /api/v1/webhooks/square — verifies the delivery signature and
// acknowledges. No business rules are attached to webhook events.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get("X-Square-Hmacsha256-Signature")

	valid, err := square.VerifySignature(h.SignatureKey, c.BaseURL()+c.OriginalURL(), body, signature)
	if err != nil {
		applog.Error(c, "webhook.verify.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Webhook verification unavailable"})
	}
	if !valid {
		applog.Security(c, "webhook.signature.invalid", nil)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var event struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	applog.Info(c, "webhook.received", map[string]any{"type": event.Type})
	return c.JSON(fiber.Map{"received": true, "type": event.Type})
}
