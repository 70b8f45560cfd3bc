package dispute

import (
	"github.com/gofiber/fiber/v2"

	"backend-gatoryde/internal/apperr"
	"backend-gatoryde/internal/auth"
	"backend-gatoryde/internal/web"
)

func RegisterRoutes(r fiber.Router, svc *Service, authRequired, adminRequired fiber.Handler) {
	r.Post("/", authRequired, func(c *fiber.Ctx) error {
		var req struct {
			BookingID string `json:"booking_id"`
			Reason    string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil || req.BookingID == "" {
			return web.Fail(c, apperr.New(apperr.KindInvalidArgument, "booking_id and reason required"))
		}

		d, err := svc.Open(c.Context(), auth.UserID(c), req.BookingID, req.Reason)
		if err != nil {
			return web.Fail(c, err)
		}
		return web.OK(c, fiber.StatusCreated, fiber.Map{"message": "Dispute opened", "dispute": d})
	})

	r.Get("/:id", authRequired, func(c *fiber.Ctx) error {
		d, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return web.Fail(c, err)
		}
		return web.OK(c, fiber.StatusOK, fiber.Map{"dispute": d})
	})

	r.Post("/:id/resolve", authRequired, adminRequired, func(c *fiber.Ctx) error {
		var req struct {
			Outcome    string `json:"outcome"`
			Resolution string `json:"resolution"`
		}
		if err := c.BodyParser(&req); err != nil {
			return web.Fail(c, apperr.New(apperr.KindInvalidArgument, "invalid payload"))
		}

		d, err := svc.Resolve(c.Context(), auth.UserID(c), c.Params("id"), req.Outcome, req.Resolution)
		if err != nil {
			return web.Fail(c, err)
		}
		return web.OK(c, fiber.StatusOK, fiber.Map{"message": "Dispute " + d.Status, "dispute": d})
	})
}
