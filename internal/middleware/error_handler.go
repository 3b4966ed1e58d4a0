package middleware

import (
	"errors"
	"time"

	"wealthdesk-backend/internal/application/health"
	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global error handler. It renders *fiber.Error and
// *apperrors.Error in the standard format and appends 5xx responses to the
// health error log.
func ErrorHandler(rec health.Recorder) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		var renderErr error
		if errors.As(err, &fe) {
			renderErr = response.Error(c, fe.Message, fe.Code, nil)
		} else if _, ok := apperrors.As(err); ok {
			renderErr = response.FromError(c, err)
		} else {
			renderErr = response.FromError(c, apperrors.Internal(err))
		}

		if status := c.Response().StatusCode(); status >= fiber.StatusInternalServerError {
			rec.LogError(c.UserContext(), health.ErrorEntry{
				Time:    time.Now(),
				TraceID: GetTraceID(c),
				Method:  c.Method(),
				Path:    c.Path(),
				Status:  status,
				Message: err.Error(),
			})
		}
		return renderErr
	}
}
