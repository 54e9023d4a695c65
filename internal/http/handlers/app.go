package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "stoik/internal/log"
)

// BodyLimit caps request bodies at 1 MiB.
const BodyLimit = 1 << 20

type Options struct {
	// RateMax requests per RateWindow per client IP across the API. Zero disables.
	RateMax    int
	RateWindow time.Duration
	// AvailabilityMax is the tighter limit on the availability probe.
	AvailabilityMax int
	AccessLog       bool
}

func DefaultOptions() Options {
	return Options{
		RateMax:         120,
		RateWindow:      time.Minute,
		AvailabilityMax: 30,
		AccessLog:       true,
	}
}

// NewApp builds the fiber app with middleware and every API route.
func NewApp(d *Deps, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "stoik",
		BodyLimit:    BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	if opts.RateMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateMax,
			Expiration: opts.RateWindow,
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.api.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(errorBody("RateLimited", "rate limit exceeded, retry soon"))
			},
		}))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api/v1")
	Register(api, d, opts)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(errorBody("NotFound", "route not found"))
	})
	return app
}

// Register mounts the API handlers on r.
func Register(r fiber.Router, d *Deps, opts Options) {
	r.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	r.Get("/products", d.ProductHandler.List)
	r.Post("/products", d.ProductHandler.Create)
	r.Get("/products/:id", d.ProductHandler.Get)
	r.Put("/products/:id", d.ProductHandler.Update)
	r.Delete("/products/:id", d.ProductHandler.Delete)
	r.Put("/products/:id/stock", d.ProductHandler.SetStock)
	r.Get("/categories", d.CategoryHandler.List)

	avail := []fiber.Handler{}
	if opts.AvailabilityMax > 0 {
		window := opts.RateWindow
		if window == 0 {
			window = time.Minute
		}
		avail = append(avail, limiter.New(limiter.Config{
			Max:        opts.AvailabilityMax,
			Expiration: window,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP() + "|avail"
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.availability.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(errorBody("RateLimited", "rate limit exceeded, retry soon"))
			},
		}))
	}
	r.Get("/availability", append(avail, d.InventoryHandler.Check)...)

	r.Get("/customers", d.CustomerHandler.List)
	r.Post("/customers", d.CustomerHandler.Create)
	r.Get("/customers/:id", d.CustomerHandler.Get)
	r.Put("/customers/:id", d.CustomerHandler.Update)
	r.Delete("/customers/:id", d.CustomerHandler.Delete)
	r.Post("/customers/:id/recompute", d.CustomerHandler.Recompute)

	r.Get("/orders", d.OrderHandler.List)
	r.Post("/orders", d.OrderHandler.Create)
	r.Post("/orders/bulk", d.OrderHandler.CreateBulk)
	r.Get("/orders/:id", d.OrderHandler.Get)
	r.Patch("/orders/:id", d.OrderHandler.Update)
	r.Delete("/orders/:id", d.OrderHandler.Delete)

	r.Get("/dashboard", d.DashboardHandler.Get)
}
