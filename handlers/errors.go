package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"game-stats-system/models"
	"game-stats-system/services"
)

// respondError maps service errors onto the service's JSON error bodies.
// Anything unrecognized is logged and reported as an internal error.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var (
		notFound   *services.NotFoundError
		state      *services.StateError
		validation *services.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound.Error()})
	case errors.As(err, &state):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": state.Error()})
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validation.Error()})
	case errors.Is(err, services.ErrExportDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}

	log.Error("[HTTP] internal error",
		zap.String("method", utils.CopyString(c.Method())),
		zap.String("path", utils.CopyString(c.Path())),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Error!"})
}

// badBody reports a body that could not be decoded.
func badBody(c *fiber.Ctx, err error) error {
	var statErr *models.StatTypeError
	if errors.As(err, &statErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": statErr.Error()})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bad Request"})
}
