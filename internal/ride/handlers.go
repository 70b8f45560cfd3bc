package ride

import (
	"github.com/gofiber/fiber/v2"

	"backend-gatoryde/internal/apperr"
	"backend-gatoryde/internal/auth"
	"backend-gatoryde/internal/web"
)

func RegisterRoutes(r fiber.Router, svc *Service, authRequired, verifiedRequired fiber.Handler) {
	r.Post("/", authRequired, verifiedRequired, func(c *fiber.Ctx) error {
		var req Ride
		if err := c.BodyParser(&req); err != nil {
			return web.Fail(c, apperr.New(apperr.KindInvalidArgument, "invalid payload"))
		}
		if req.OriginText == "" || req.DestText == "" {
			return web.Fail(c, apperr.New(apperr.KindInvalidArgument, "origin and destination required"))
		}
		req.DriverID = auth.UserID(c)

		ride, err := svc.CreateRide(c.Context(), req)
		if err != nil {
			return web.Fail(c, err)
		}
		return web.OK(c, fiber.StatusCreated, fiber.Map{"message": "Ride posted", "ride": ride})
	})

	r.Get("/", func(c *fiber.Ctx) error {
		rides, err := svc.ListOpen(c.Context(), c.Query("to"))
		if err != nil {
			return web.Fail(c, err)
		}
		return web.OK(c, fiber.StatusOK, fiber.Map{"rides": rides})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		ride, err := svc.GetRide(c.Context(), c.Params("id"))
		if err != nil {
			return web.Fail(c, err)
		}
		return web.OK(c, fiber.StatusOK, fiber.Map{"ride": ride})
	})
}
