package middleware

import (
	"strings"

	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig holds the allowed origins and the dev bypass password.
type CORSConfig struct {
	// AllowedOrigins is a comma-separated list. Entries starting with "." match
	// any origin with that suffix; others must match exactly.
	AllowedOrigins string
	DevPassword    string
}

func (cfg CORSConfig) allows(origin string) bool {
	origin = strings.ToLower(origin)
	for _, entry := range strings.Split(cfg.AllowedOrigins, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		switch {
		case entry == "":
		case entry == "*", entry == origin:
			return true
		case strings.HasPrefix(entry, ".") && strings.HasSuffix(origin, entry):
			return true
		}
	}
	return false
}

// CORS allows configured origins, localhost preflights, and requests carrying
// the dev-password header. Credentials allowed.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		// No origin (same-origin or tools): allow
		if origin == "" {
			return c.Next()
		}
		local := strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
		allowed := cfg.allows(origin) ||
			(cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword)
		if !allowed && !(local && c.Method() == fiber.MethodOptions) {
			return response.Forbidden(c, "Not allowed by CORS")
		}
		setCORSHeaders(c, origin)
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func setCORSHeaders(c *fiber.Ctx, origin string) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
	c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type, Authorization, X-Access-Token, dev-password")
	c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	c.Set(fiber.HeaderAccessControlExposeHeaders, traceIDHeader)
	c.Set(fiber.HeaderVary, fiber.HeaderOrigin)
}
