package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gopkg.in/natefinch/lumberjack.v2"

	"shopcore/internal/config"
	"shopcore/internal/http/handlers"
	applog "shopcore/internal/log"
	"shopcore/internal/repos"
)

func main() {
	cfg := config.Load()

	// File logging with rotation, mirrored to stdout
	if cfg.LogFile != "" {
		rot := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		log.SetOutput(io.MultiWriter(os.Stdout, rot))
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := repos.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal(err)
	}

	deps := handlers.NewDeps(db, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Something went wrong. Please try again.",
			})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	// ---------- Routes ----------
	api := app.Group("/api/v1")

	// Auth (login throttled)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false, "message": "Too many attempts. Please try again later.",
			})
		},
	}), deps.AuthHandler.Login)
	api.Post("/auth/logout", deps.AuthHandler.Logout)
	api.Get("/auth/me", deps.AuthHandler.Me)

	// Catalog
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Get)

	// Cart
	cart := api.Group("/cart", handlers.RequireCustomer(deps.Auth, deps.Customers))
	cart.Get("/", deps.CartHandler.View)
	cart.Post("/items", deps.CartHandler.Add)
	cart.Patch("/items/:productId", deps.CartHandler.UpdateItem)
	cart.Delete("/items/:productId", deps.CartHandler.RemoveItem)
	cart.Delete("/", deps.CartHandler.Clear)

	// Orders
	orders := api.Group("/orders", handlers.RequireCustomer(deps.Auth, deps.Customers))
	orders.Post("/", deps.OrderHandler.Create)
	orders.Get("/my-orders", deps.OrderHandler.MyOrders)
	orders.Get("/:id", deps.OrderHandler.Get)
	orders.Patch("/:id/cancel", deps.OrderHandler.Cancel)

	// Admin
	admin := api.Group("/admin", handlers.RequireAdmin(deps.Auth))
	admin.Get("/orders/:id", deps.OrderHandler.Get)
	admin.Patch("/orders/:id/status", deps.OrderHandler.UpdateStatus)
	admin.Post("/products", deps.ProductHandler.Create)
	admin.Patch("/products/:id", deps.ProductHandler.Update)
	admin.Delete("/products/:id", deps.ProductHandler.Delete)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
