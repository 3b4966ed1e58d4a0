// Package params reads path, query and body values from Fiber requests and
// reports bad input as validation errors.
package params

import (
	"io"
	"strconv"
	"strings"

	"wealthdesk-backend/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ErrInvalidBody is returned when the JSON body cannot be decoded.
var ErrInvalidBody = apperrors.Validation("Invalid request body")

// ID parses the named path parameter as a UUID.
func ID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.Validation("Invalid "+name, apperrors.FieldError{Field: name, Message: "Must be a UUID"})
	}
	return id, nil
}

// Body decodes the request body into v.
func Body(c *fiber.Ctx, v interface{}) error {
	if len(c.Body()) == 0 {
		return ErrInvalidBody
	}
	if err := c.BodyParser(v); err != nil {
		return ErrInvalidBody
	}
	return nil
}

// Int reads a positive integer query value, falling back to def when absent.
func Int(c *fiber.Ctx, name string, def, max int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperrors.Validation("Invalid "+name, apperrors.FieldError{Field: name, Message: "Must be a positive integer"})
	}
	if max > 0 && n > max {
		n = max
	}
	return n, nil
}

// Bool reads an optional true/false query value.
func Bool(c *fiber.Ctx, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.Validation("Invalid "+name, apperrors.FieldError{Field: name, Message: "Must be true or false"})
	}
	return &b, nil
}

// OptionalID reads an optional UUID query value.
func OptionalID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.Validation("Invalid "+name, apperrors.FieldError{Field: name, Message: "Must be a UUID"})
	}
	return &id, nil
}

// File reads the multipart "file" field.
func File(c *fiber.Ctx) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, apperrors.Validation("A file is required", apperrors.FieldError{Field: "file", Message: "Required"})
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, apperrors.Validation("Could not read the uploaded file")
	}
	defer f.Close()
	data := make([]byte, fh.Size)
	if _, err := io.ReadFull(f, data); err != nil {
		return "", nil, apperrors.Validation("Could not read the uploaded file")
	}
	return fh.Filename, data, nil
}
