package booking

import (
	"github.com/gofiber/fiber/v2"

	"backend-gatoryde/internal/apperr"
	"backend-gatoryde/internal/auth"
	"backend-gatoryde/internal/web"
)

func RegisterRoutes(r fiber.Router, svc *Service, authRequired, verifiedRequired fiber.Handler) {
	r.Post("/", authRequired, verifiedRequired, func(c *fiber.Ctx) error {
		var req struct {
			RideID string `json:"ride_id"`
			Seats  int    `json:"seats"`
		}
		if err := c.BodyParser(&req); err != nil || req.RideID == "" {
			return web.Fail(c, apperr.New(apperr.KindInvalidArgument, "ride_id and seats required"))
		}

		b, err := svc.Create(c.Context(), auth.UserID(c), req.RideID, req.Seats)
		if err != nil {
			return web.Fail(c, err)
		}
		return web.OK(c, fiber.StatusCreated, fiber.Map{"message": "Booking authorized", "booking": b})
	})

	r.Get("/:id", authRequired, func(c *fiber.Ctx) error {
		b, err := svc.Get(c.Context(), auth.UserID(c), c.Params("id"))
		if err != nil {
			return web.Fail(c, err)
		}
		return web.OK(c, fiber.StatusOK, fiber.Map{"booking": b})
	})

	r.Post("/:id/start", authRequired, func(c *fiber.Ctx) error {
		var req struct {
			Code string `json:"code"`
		}
		if err := c.BodyParser(&req); err != nil || req.Code == "" {
			return web.Fail(c, apperr.New(apperr.KindInvalidArgument, "code required"))
		}

		b, err := svc.StartTrip(c.Context(), auth.UserID(c), c.Params("id"), req.Code)
		if err != nil {
			return web.Fail(c, err)
		}
		return web.OK(c, fiber.StatusOK, fiber.Map{"message": "Trip started", "booking": b})
	})

	r.Post("/:id/resend-code", authRequired, func(c *fiber.Ctx) error {
		b, err := svc.ResendCode(c.Context(), auth.UserID(c), c.Params("id"))
		if err != nil {
			return web.Fail(c, err)
		}
		return web.OK(c, fiber.StatusOK, fiber.Map{"message": "Trip start code sent", "booking": b})
	})

	r.Post("/:id/cancel", authRequired, func(c *fiber.Ctx) error {
		res, err := svc.Cancel(c.Context(), auth.UserID(c), c.Params("id"))
		if err != nil {
			return web.Fail(c, err)
		}
		return web.OK(c, fiber.StatusOK, fiber.Map{
			"message":           res.Message,
			"booking":           res.Booking,
			"late_fee_possible": res.LateFeePossible,
		})
	})
}

// RegisterRideRoutes mounts the ride-level lifecycle operations on the
// rides group.
func RegisterRideRoutes(r fiber.Router, svc *Service, authRequired fiber.Handler) {
	r.Post("/:id/complete", authRequired, func(c *fiber.Ctx) error {
		res, err := svc.Complete(c.Context(), auth.UserID(c), c.Params("id"))
		if err != nil {
			return web.Fail(c, err)
		}
		return web.OK(c, fiber.StatusOK, fiber.Map{
			"message":   "Ride completed",
			"ride_id":   res.RideID,
			"completed": res.Completed,
			"failed":    res.Failed,
		})
	})
}
