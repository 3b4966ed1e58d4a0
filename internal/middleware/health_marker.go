package middleware

import (
	"strings"
	"time"

	"wealthdesk-backend/internal/application/health"

	"github.com/gofiber/fiber/v2"
)

// HealthMarker records request stats in Redis (skips /, /health*, /metrics, favicon).
func HealthMarker(rec health.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || path == "/metrics" || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}
		start := time.Now()
		ctx := c.UserContext()
		rec.Start(ctx, c.Method(), c.OriginalURL(), c.IP(), start)

		err := c.Next()

		rec.Finish(ctx, statusOf(c, err), time.Since(start))
		return err
	}
}
