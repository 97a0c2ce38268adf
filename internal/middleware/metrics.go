package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware returns the request instrumentation handler for a
// Prometheus middleware created by the server. The scrape endpoint itself
// is registered during route setup.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
