package middleware

import (
	"crypto/subtle"

	"wealthdesk-backend/internal/metrics"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// SyncToken guards machine-to-machine routes with a static bearer token.
// An empty configured token disables the routes (503).
func SyncToken(token string) fiber.Handler {
	want := []byte(token)
	return func(c *fiber.Ctx) error {
		if len(want) == 0 {
			log.Warn().Str("path", c.Path()).Msg("sync: SYNC_API_TOKEN not configured, rejecting request")
			return response.Error(c, "Sync API is not configured", fiber.StatusServiceUnavailable, nil)
		}
		got := []byte(BearerToken(c))
		if len(got) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			metrics.AuthFailuresTotal.WithLabelValues("sync_token").Inc()
			return response.Unauthorized(c, "Invalid sync token")
		}
		return c.Next()
	}
}
