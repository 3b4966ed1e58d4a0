package middleware

import (
	"errors"
	"strconv"
	"time"

	"wealthdesk-backend/internal/metrics"
	"wealthdesk-backend/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latency by matched route pattern.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := statusOf(c, err)
		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "/" {
			route = r.Path
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// statusOf is the status the error handler will eventually write for err.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	if ae, ok := apperrors.As(err); ok {
		return ae.Kind.Status()
	}
	return fiber.StatusInternalServerError
}
