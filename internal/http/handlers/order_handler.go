package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "vapordepot/internal/log"
	"vapordepot/internal/repos"
	"vapordepot/internal/services"
	"vapordepot/internal/validate"
)

type OrderHandler struct {
	Order *services.OrderService
	Repo  *repos.OrderRepo
}

type checkoutRequest struct {
	Items           []services.CheckoutItem   `json:"items"`
	ShippingAddress *services.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                    `json:"paymentMethod"`
}

// POST /api/v1/orders/checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	cl := claims(c)
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	order, err := h.Order.Checkout(c.Context(), services.CheckoutInput{
		UserID:          cl.UserID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		var stockErr *services.InsufficientStockError
		if errors.As(err, &stockErr) {
			applog.Info(c, "checkout.stock.reject", map[string]any{"items": len(stockErr.Items)})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":        "Insufficient stock for one or more items",
				"insufficient": stockErr.Items,
			})
		}
		applog.Error(c, "checkout.fail", err, nil)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Checkout failed"})
	}

	applog.Audit(c, "order.create", map[string]any{"order_id": order.ID, "total": order.TotalAmount})
	return c.JSON(fiber.Map{"orderId": order.ID, "status": order.Status})
}

// GET /api/v1/orders/:id — owner or admin only
func (h *OrderHandler) View(c *fiber.Ctx) error {
	cl := claims(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	order, err := h.Repo.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	if order.UserID != cl.UserID && cl.Role != "admin" {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	return c.JSON(fiber.Map{"order": order})
}

// GET /api/v1/orders — history for the current user
func (h *OrderHandler) History(c *fiber.Ctx) error {
	cl := claims(c)
	orders, err := h.Repo.ListByUser(cl.UserID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not load orders"})
	}
	return c.JSON(fiber.Map{"orders": orders})
}
