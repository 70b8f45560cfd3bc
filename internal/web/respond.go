package web

import (
	"github.com/gofiber/fiber/v2"

	"backend-gatoryde/internal/apperr"
)

// OK renders the uniform success envelope. payload keys are merged in so
// handlers can attach the entity alongside success/message.
func OK(c *fiber.Ctx, status int, payload fiber.Map) error {
	if payload == nil {
		payload = fiber.Map{}
	}
	payload["success"] = true
	return c.Status(status).JSON(payload)
}

// Fail renders a business failure with its mapped HTTP status. Anything
// that is not an apperr is an infrastructure error and surfaces as a 500.
func Fail(c *fiber.Ctx, err error) error {
	e := apperr.From(err)
	if e == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	body := fiber.Map{"success": false, "message": e.Message}
	if len(e.Fields) > 0 {
		body["errors"] = e.Fields
	}
	return c.Status(statusFor(e.Kind)).JSON(body)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidArgument:
		return fiber.StatusBadRequest
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
