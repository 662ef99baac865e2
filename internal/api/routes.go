package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sourcepilot/sourcing-aggregator/internal/store"
)

// RegisterRoutes registers all HTTP routes on the Fiber app. nc and st may
// be nil; the health endpoint then skips those checks.
func RegisterRoutes(app *fiber.App, nc *nats.Conn, st store.Store, handler *Handler) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{}
		status := "ok"
		code := fiber.StatusOK

		if nc != nil {
			checks["nats"] = "ok"
			if !nc.IsConnected() {
				checks["nats"] = "disconnected"
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
				checks["nats"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		if st != nil {
			checks["store"] = "ok"
			healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := st.HealthCheck(healthCtx); err != nil {
				checks["store"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	v1 := app.Group("/api/v1")
	v1.Post("/search", handler.Search)
	v1.Post("/search/batch", handler.SearchBatch)
	v1.Get("/sources", handler.ListSources)
	v1.Get("/sources/:source/health", handler.SourceHealth)
	v1.Delete("/sources/:source/credential", handler.ClearCredential)
	v1.Post("/products/saved", handler.SaveProduct)
	v1.Get("/products/saved", handler.ListSavedProducts)
	v1.Post("/products/push", handler.PushProduct)
	v1.Get("/products/pushes", handler.ListPushes)
}
