package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"stylar-exchange/metrics"
)

// MetricsMiddleware records request counts and latency per matched route.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		metrics.RequestStarted()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		metrics.RequestFinished(c.Method(), c.Route().Path, strconv.Itoa(status), time.Since(start).Seconds())
		return err
	}
}
