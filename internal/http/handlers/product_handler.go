package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "vapordepot/internal/log"
	"vapordepot/internal/services"
	"vapordepot/internal/validate"
)

type ProductHandler struct {
	Listing *services.ListingService
}

// GET /api/v1/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid search query"})
	}
	category := c.Query("category")
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize", "20"))

	listing, err := h.Listing.Products(c.Context(), q, category, page, pageSize)
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch products"})
	}
	return c.JSON(listing)
}

// GET /api/v1/products/:variationId
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("variationId"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}
	item, found, err := h.Listing.Product(c.Context(), id)
	if err != nil {
		applog.Error(c, "products.detail.fail", err, map[string]any{"variation_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch product"})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}
	return c.JSON(fiber.Map{"item": item})
}

// GET /api/v1/categories
func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	facets, err := h.Listing.Categories(c.Context())
	if err != nil {
		applog.Error(c, "categories.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch categories"})
	}
	names := make([]string, 0, len(facets))
	for _, f := range facets {
		names = append(names, f.Name)
	}
	return c.JSON(fiber.Map{"categories": names})
}
