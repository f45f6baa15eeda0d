package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"vapordepot/internal/cache"
	applog "vapordepot/internal/log"
	"vapordepot/internal/repos"
	"vapordepot/internal/services"
	"vapordepot/internal/validate"
)

type AdminHandler struct {
	Sync       *services.SyncService
	Orders     *repos.OrderRepo
	OrderSvc   *services.OrderService
	Cache      *cache.Layer
	SyncSecret string
}

// GET /api/v1/admin/orders
func (h *AdminHandler) OrdersList(c *fiber.Ctx) error {
	orders, err := h.Orders.ListLatest(200)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not load orders"})
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// POST /api/v1/admin/orders/:id/complete
func (h *AdminHandler) CompleteOrder(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing order id"})
	}
	order, err := h.OrderSvc.Complete(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotPending) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Order is not pending"})
		}
		applog.Error(c, "admin.orders.complete.fail", err, map[string]any{"order_id": id})
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not complete order"})
	}
	applog.Audit(c, "admin.orders.complete", map[string]any{"order_id": id, "remote_order_id": order.RemoteOrderID})
	return c.JSON(fiber.Map{"orderId": order.ID, "remoteOrderId": order.RemoteOrderID, "status": order.Status})
}

// POST /api/v1/admin/products/import — multipart CSV upload
func (h *AdminHandler) ImportCSV(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing file field in form-data"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Could not read upload"})
	}
	defer f.Close()

	result, err := h.Sync.ImportCSV(c.Context(), f)
	if err != nil {
		applog.Error(c, "admin.import.fail", err, nil)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	applog.Audit(c, "admin.import", map[string]any{
		"total": result.TotalProcessed, "upserted": result.Upserted, "modified": result.Modified,
	})
	return c.JSON(fiber.Map{
		"success":        true,
		"totalProcessed": result.TotalProcessed,
		"upserted":       result.Upserted,
		"matched":        result.Matched,
		"modified":       result.Modified,
	})
}

// POST /api/v1/admin/products/sync
func (h *AdminHandler) SyncRemote(c *fiber.Ctx) error {
	result, err := h.Sync.Reconcile(c.Context())
	if err != nil {
		applog.Error(c, "admin.sync.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	applog.Audit(c, "admin.sync", map[string]any{"synced": result.Synced, "zeroed": result.Zeroed})
	return c.JSON(fiber.Map{"success": true, "synced": result.Synced, "zeroed": result.Zeroed})
}

// POST /api/v1/admin/cache/refresh — invalidate, optionally repopulate
func (h *AdminHandler) CacheRefresh(c *fiber.Ctx) error {
	h.Cache.Invalidate(c.Context())
	if c.QueryBool("repopulate") {
		start := time.Now()
		snap, err := h.Cache.Get(c.Context())
		if err != nil {
			applog.Error(c, "admin.cache.refresh.fail", err, nil)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Repopulate failed"})
		}
		applog.Audit(c, "admin.cache.refresh", map[string]any{"items": len(snap.Items)})
		return c.JSON(fiber.Map{
			"success":    true,
			"items":      len(snap.Items),
			"durationMs": time.Since(start).Milliseconds(),
		})
	}
	applog.Audit(c, "admin.cache.invalidate", nil)
	return c.JSON(fiber.Map{"success": true})
}
