package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"game-stats-system/services"
)

func SetupEventRoutes(app *fiber.App, events *services.EventService, log *zap.Logger) {
	group := app.Group("/events")

	group.Get("/", func(c *fiber.Ctx) error {
		list, err := events.List(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(list)
	})

	group.Post("/", func(c *fiber.Ctx) error {
		var req services.CreateEventInput
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		event, err := events.Create(c.UserContext(), req)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(event)
	})

	group.Get("/:id", func(c *fiber.Ctx) error {
		event, err := events.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(event)
	})

	group.Post("/:id/users/:userId/send-rewards", func(c *fiber.Ctx) error {
		info, err := events.RedeemRewards(c.UserContext(), c.Params("id"), c.Params("userId"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(info)
	})
}
