package httpapi

import (
	"errors"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/gofiber/fiber/v2"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func success(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{Success: true, Data: data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Data: data})
}

func noContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func badRequest(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusBadRequest, message, nil)
}

func unauthorized(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "authentication required"
	}
	return fail(c, fiber.StatusUnauthorized, message, nil)
}

func fail(c *fiber.Ctx, status int, message string, details map[string]any) error {
	return c.Status(status).JSON(Response{
		Error: &APIError{Code: errorCode(status), Message: message, Details: details},
	})
}

// writeError maps a service error onto a status code and envelope.
func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	var details map[string]any
	var ve *domain.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		details = map[string]any{"field": ve.Field}
	}
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "internal server error"
	}
	return fail(c, status, message, details)
}

func statusFor(err error) int {
	var ve *domain.ValidationError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	case errors.As(err, &ve) && ve.Field != "":
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// errorHandler renders errors that escape handlers, including fiber's own
// 404 and 405 errors.
func errorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err)
}
