package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"

	"vapordepot/internal/cache"
	"vapordepot/internal/config"
	"vapordepot/internal/http/handlers"
	applog "vapordepot/internal/log"
	"vapordepot/internal/repos"
	"vapordepot/internal/services"
	"vapordepot/internal/square"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Remote commerce platform client
	sq := square.New(cfg.SquareBaseURL, cfg.SquareToken, cfg.SquareLocationID, cfg.MaxCatalogObjects)

	// Cache layer: authoritative store -> durable redis tier -> local tier -> remote
	var durable cache.SnapshotStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		durable = cache.NewRedisSnapshots(rdb)
	} else {
		log.Println("[cache] REDIS_ADDR not set, durable cache tier disabled")
	}
	layer := cache.NewLayer(repos.NewProductRepo(db), durable, sq, cfg.CacheTTL)

	// Auth wiring
	authSvc := &services.AuthService{
		Users:         repos.NewUserRepo(db),
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		MinAge:        cfg.MinAge,
	}

	// Templates & app
	engine := html.New("./web/templates", ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong. Please try again."})
			}
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	app.Server().MaxRequestBodySize = 4 << 20 // CSV uploads stay small

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/")
		},
	}))

	app.Static("/static", "./web/static")

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, layer, sq, authSvc)

	// Public pages
	app.Get("/", deps.PageHandler.Home)
	app.Get("/products", deps.PageHandler.Products)
	app.Get("/product/:variationId", deps.PageHandler.Product)

	// API
	api := app.Group("/api/v1")
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:variationId", deps.ProductHandler.Detail)
	api.Get("/categories", deps.ProductHandler.Categories)

	// Auth (login throttled)
	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	})
	api.Post("/auth/register", deps.AuthHandler.Register)
	api.Post("/auth/login", loginLimiter, deps.AuthHandler.Login)
	api.Post("/auth/refresh", deps.AuthHandler.Refresh)

	// Orders
	api.Post("/orders/checkout", handlers.RequireUser(authSvc), deps.OrderHandler.Checkout)
	api.Get("/orders", handlers.RequireUser(authSvc), deps.OrderHandler.History)
	api.Get("/orders/:id", handlers.RequireUser(authSvc), deps.OrderHandler.View)

	// Webhooks
	api.Post("/webhooks/square", deps.WebhookHandler.Receive)

	// Admin
	admin := api.Group("/admin")
	admin.Get("/orders", handlers.RequireAdmin(authSvc), deps.AdminHandler.OrdersList)
	admin.Post("/orders/:id/complete", handlers.RequireAdmin(authSvc), deps.AdminHandler.CompleteOrder)
	admin.Post("/products/import", handlers.RequireAdmin(authSvc), deps.AdminHandler.ImportCSV)
	admin.Post("/products/sync", handlers.AdminOrSyncSecret(authSvc, cfg.SyncSecret), deps.AdminHandler.SyncRemote)
	admin.Post("/cache/refresh", handlers.RequireAdmin(authSvc), deps.AdminHandler.CacheRefresh)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
