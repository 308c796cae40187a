/*
Package http is the web boundary: the map page, JSON endpoints for search, points,
routes, chat and map settings, plus health and metrics.
*/
package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/shanehull/digmap/internal/metrics"
)

const defaultRateLimit = 60

// SetupRoutes registers middleware and all routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	app.Use(AccessLogMiddleware())

	rate := deps.RateLimit
	if rate <= 0 {
		rate = defaultRateLimit
	}
	app.Use(limiter.New(limiter.Config{
		Max:        rate,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	app.Get("/healthz", HealthHandler())
	app.Get("/readyz", ReadyHandler(deps))

	app.Get("/", IndexHandler(deps))
	app.Get("/center_map", CenterMapHandler(deps))
	app.Post("/search_location", SearchLocationHandler(deps))
	app.Post("/select_location", SelectLocationHandler(deps))
	app.Post("/chat", ChatHandler(deps))
	app.Post("/save_route", SaveRouteHandler(deps))
	app.Get("/load_route", LoadRouteHandler(deps))
	app.Post("/change_map_layer", ChangeMapLayerHandler(deps))
	app.Post("/toggle_old_map", ToggleOldMapHandler(deps))
	app.Post("/email_report", EmailReportHandler(deps))
}
