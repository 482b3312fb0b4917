// handlers/game_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"game-stats-system/models"
	"game-stats-system/services"
)

// GameDeps are the services behind the /games routes.
type GameDeps struct {
	Games  *services.GameService
	Events *services.EventService
	Ledger *services.LedgerService
	Export *services.ExportService
	Log    *zap.Logger
}

func SetupGameRoutes(app *fiber.App, d GameDeps) {
	games := app.Group("/games")

	games.Get("/", func(c *fiber.Ctx) error {
		list, err := d.Games.List(c.UserContext())
		if err != nil {
			return respondError(c, d.Log, err)
		}
		return c.JSON(list)
	})

	games.Post("/", func(c *fiber.Ctx) error {
		var req services.CreateGameInput
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		game, err := d.Games.Create(c.UserContext(), req)
		if err != nil {
			return respondError(c, d.Log, err)
		}
		return c.JSON(game)
	})

	games.Get("/:id", func(c *fiber.Ctx) error {
		game, err := d.Games.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, d.Log, err)
		}
		return c.JSON(game)
	})

	games.Patch("/:id", func(c *fiber.Ctx) error {
		var req services.UpdateGameInput
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		game, err := d.Games.Update(c.UserContext(), c.Params("id"), req)
		if err != nil {
			return respondError(c, d.Log, err)
		}
		return c.JSON(game)
	})

	games.Delete("/:id", func(c *fiber.Ctx) error {
		if err := d.Games.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, d.Log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// Events that haven't ended yet
	games.Get("/:id/events", func(c *fiber.Ctx) error {
		events, err := d.Events.ActiveForGame(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, d.Log, err)
		}
		return c.JSON(events)
	})

	// Get-or-create a player's stats for the game
	games.Post("/:id/users/:userId", func(c *fiber.Ctx) error {
		info, err := d.Ledger.GetOrCreate(c.UserContext(), c.Params("id"), c.Params("userId"))
		if err != nil {
			return respondError(c, d.Log, err)
		}
		return c.JSON(info)
	})

	games.Get("/:id/users/:userId", func(c *fiber.Ctx) error {
		info, err := d.Ledger.Find(c.UserContext(), c.Params("id"), c.Params("userId"), true)
		if err != nil {
			return respondError(c, d.Log, err)
		}
		return c.JSON(info)
	})

	// Overwrite the given stats
	games.Patch("/:id/users/:userId", func(c *fiber.Ctx) error {
		var req struct {
			Stats models.Stats `json:"stats"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		ctx := c.UserContext()
		info, err := d.Ledger.Find(ctx, c.Params("id"), c.Params("userId"), false)
		if err != nil {
			return respondError(c, d.Log, err)
		}
		info, err = d.Ledger.ReplaceStats(ctx, info, req.Stats)
		if err != nil {
			return respondError(c, d.Log, err)
		}
		return c.JSON(info)
	})

	games.Delete("/:id/users/:userId", func(c *fiber.Ctx) error {
		if err := d.Ledger.Delete(c.UserContext(), c.Params("id"), c.Params("userId")); err != nil {
			return respondError(c, d.Log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	games.Post("/:id/export", func(c *fiber.Ctx) error {
		url, err := d.Export.ExportGameStats(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, d.Log, err)
		}
		return c.JSON(fiber.Map{"url": url})
	})
}
