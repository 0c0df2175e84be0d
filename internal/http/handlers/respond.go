package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shopcore/internal/domain"
	applog "shopcore/internal/log"
)

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondPage(c *fiber.Ctx, message string, items any, total, page, limit int) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"meta":    fiber.Map{"total": total, "page": page, "limit": limit},
		"data":    items,
	})
}

// fail translates the business error taxonomy into response codes. Unknown
// errors are storage failures: logged and surfaced as 500 without detail.
func fail(c *fiber.Ctx, action string, err error) error {
	var status int
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrAccountBlocked):
		status = fiber.StatusForbidden
	case errors.Is(err, domain.ErrBadCredentials):
		status = fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidTransition):
		status = fiber.StatusBadRequest
	default:
		applog.Error(c, action, err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Something went wrong. Please try again.",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}
