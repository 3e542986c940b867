package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the session routes at the root and under /api/v1.
func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	mountAuthRoutes(app, h)
	mountAuthRoutes(app.Group("/api/v1"), h)
}

func mountAuthRoutes(r fiber.Router, h *AuthHandler) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/refresh", h.Refresh)

	// Protected routes
	r.Get("/me", h.RequireAuth(), h.Me)
}

// RegisterOpsRoutes mounts health and Prometheus endpoints.
func RegisterOpsRoutes(app *fiber.App, gatherer prometheus.Gatherer) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
