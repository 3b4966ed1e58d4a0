package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestTimeout bounds the request's user context, which handlers pass to
// every store call. d <= 0 leaves the context alone, as do paths starting
// with one of the exempt prefixes.
func RequestTimeout(d time.Duration, exempt ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		for _, prefix := range exempt {
			if strings.HasPrefix(c.Path(), prefix) {
				return c.Next()
			}
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
