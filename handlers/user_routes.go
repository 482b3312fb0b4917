package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"game-stats-system/services"
)

func SetupUserRoutes(app *fiber.App, users *services.UserService, log *zap.Logger) {
	group := app.Group("/users")

	group.Get("/", func(c *fiber.Ctx) error {
		list, err := users.List(c.UserContext())
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(list)
	})

	group.Post("/", func(c *fiber.Ctx) error {
		var req services.CreateUserInput
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		user, err := users.Create(c.UserContext(), req)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(user)
	})

	group.Get("/:id", func(c *fiber.Ctx) error {
		user, err := users.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(user)
	})
}

func SetupHealthRoutes(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
