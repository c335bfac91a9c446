package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mrireport/internal/http/middleware"
	"mrireport/internal/report"
	"mrireport/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError translates report service errors into the error envelope.
// Validation messages are safe to echo: they name the field and the rule.
func writeServiceError(c *fiber.Ctx, err error) error {
	var fe *report.FieldError
	switch {
	case errors.Is(err, report.ErrMissingRequiredField):
		msg := "missing required field"
		if errors.As(err, &fe) {
			msg = fe.Error()
		}
		return writeError(c, fiber.StatusBadRequest, "MISSING_REQUIRED_FIELD", msg)
	case errors.Is(err, report.ErrInvalidField):
		msg := "invalid field"
		if errors.As(err, &fe) {
			msg = fe.Error()
		}
		return writeError(c, fiber.StatusBadRequest, "INVALID_FIELD", msg)
	case errors.Is(err, service.ErrIDRequired), errors.Is(err, service.ErrInvalidID):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "report not found")
	case errors.Is(err, service.ErrArchiveDisabled):
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "report archive is disabled")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "IMAGE_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
