package handlers

import (
	"errors"
	"strconv"
	"strings"

	"rukami/internal/services"
	"rukami/internal/validation"
	"rukami/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors to HTTP statuses. Anything unrecognised
// is logged and reported as a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	}

	if status == fiber.StatusInternalServerError {
		logger.Logger.Error().
			Err(err).
			Str("method", c.Method()).
			Str("route", c.Route().Path).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Msg("Request failed")
		return c.Status(status).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(status).JSON(fiber.Map{"message": publicMessage(err)})
}

// publicMessage strips the sentinel prefix so "not found: product 3 not found"
// becomes "product 3 not found".
func publicMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		services.ErrValidation, services.ErrUnauthorized, services.ErrForbidden,
		services.ErrNotFound, services.ErrConflict,
	} {
		if prefix := sentinel.Error() + ": "; strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}

func invalidBody(c *fiber.Ctx, err error) error {
	logger.Logger.Debug().Err(err).Str("path", c.Path()).Msg("Error parsing request body")
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  validation.FormatErrors(err),
	})
}

// idParam parses a positive integer route parameter.
func idParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return v, nil
}

// ErrorHandler renders errors that escape handlers, including Fiber's own
// 404 and 405, as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	return respondError(c, err)
}
