package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "vapordepot/internal/log"
	"vapordepot/internal/services"
)

// PageHandler serves the minimal server-rendered storefront pages.
type PageHandler struct {
	Listing *services.ListingService
}

// GET /
func (h *PageHandler) Home(c *fiber.Ctx) error {
	facets, err := h.Listing.Categories(c.Context())
	if err != nil {
		applog.Error(c, "page.home.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the shop. Please retry."})
	}
	return c.Render("home", fiber.Map{"Categories": facets})
}

// GET /products
func (h *PageHandler) Products(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	listing, err := h.Listing.Products(c.Context(), c.Query("q"), c.Query("category"), page, 20)
	if err != nil {
		applog.Error(c, "page.products.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products. Please retry."})
	}
	return c.Render("products", fiber.Map{
		"Items": listing.Items, "Total": listing.Total,
		"TotalPages": listing.TotalPages, "Page": page,
		"Q": c.Query("q"), "Category": c.Query("category"),
	})
}

// GET /product/:variationId
func (h *PageHandler) Product(c *fiber.Ctx) error {
	item, found, err := h.Listing.Product(c.Context(), c.Params("variationId"))
	if err != nil || !found {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}
	return c.Render("product", fiber.Map{"P": item})
}
