package response

import (
	"wealthdesk-backend/internal/metrics"
	"wealthdesk-backend/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// SuccessBody is the standardized success JSON shape.
type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail is the nested error object.
type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

const statusSuccess = "success"
const statusError = "error"

// Success sends a 200 OK response with the standard success format.
func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(fiber.StatusOK).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// SuccessCreated sends a 201 Created response with the standard success format.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(fiber.StatusCreated).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Error sends a response with the standard error format.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

// Unauthorized sends 401 with the same shape as other errors.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

// Forbidden sends 403 with the same shape as other errors.
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusForbidden, nil)
}

// FromError renders a service error. *apperrors.Error keeps its kind and
// details; anything else is logged and reported as a 500.
func FromError(c *fiber.Ctx, err error) error {
	ae, ok := apperrors.As(err)
	if !ok {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	switch ae.Kind {
	case apperrors.KindDataUnavailable:
		metrics.DataUnavailableTotal.Inc()
		log.Error().Err(ae.Err).Str("path", c.Path()).Msg("store unavailable")
	case apperrors.KindInternal:
		log.Error().Err(ae.Err).Str("path", c.Path()).Msg("internal error")
	}
	var details interface{}
	if len(ae.Details) > 0 {
		details = ae.Details
	}
	return Error(c, ae.Message, ae.Kind.Status(), details)
}
