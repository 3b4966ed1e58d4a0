package health

import (
	healthsvc "wealthdesk-backend/internal/application/health"
	"wealthdesk-backend/internal/pkg/params"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Service *healthsvc.Service
}

// Reset clears health stats in Redis. Requires query key=HEALTH_ADMIN_KEY.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	if err := h.Service.Reset(c.UserContext(), c.Query("key")); err != nil {
		return response.FromError(c, err)
	}
	log.Info().Str("ip", c.IP()).Msg("health: stats reset")
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

// JSON returns the service, runtime, traffic and dependency report.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	return c.JSON(h.Service.Collect(c.UserContext()))
}

// Errors returns the most recent error log entries (?limit=, default 50).
func (h *Handlers) Errors(c *fiber.Ctx) error {
	n, err := params.Int(c, "limit", 50, 100)
	if err != nil {
		return response.FromError(c, err)
	}
	entries, err := h.Service.Errors(c.UserContext(), n)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(entries)
}
