package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, provider_error, alignment_mismatch, timeout, internal_error
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errDomain maps an analysis failure onto a status and error code.
func errDomain(c *fiber.Ctx, err error) error {
	switch {
	// provider errors wrap the deadline too, so it must be checked first
	case errors.Is(err, context.DeadlineExceeded):
		return newError(c, fiber.StatusGatewayTimeout, "timeout", "analysis timed out")
	case errors.Is(err, domain.ErrInvalidInput):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrAlignmentMismatch):
		return newError(c, fiber.StatusBadGateway, "alignment_mismatch", err.Error())
	case errors.Is(err, domain.ErrProviderFailure):
		return newError(c, fiber.StatusBadGateway, "provider_error", err.Error())
	}
	logging.FromContext(c.UserContext()).Error("slope analysis failed", "error", err)
	return errInternal(c, "internal error")
}
