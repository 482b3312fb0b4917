// middleware/request_log.go
package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request after the handler chain ran.
// It expects fiber's requestid middleware to run first.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Ctx strings alias fasthttp buffers that are reused once the
		// handler returns; zap may hold fields past that point.
		requestID, _ := c.Locals("requestid").(string)
		fields := []zap.Field{
			zap.String("method", utils.CopyString(c.Method())),
			zap.String("path", utils.CopyString(c.Path())),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", utils.CopyString(requestID)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		switch status := c.Response().StatusCode(); {
		case status >= fiber.StatusInternalServerError:
			log.Error("[HTTP] request failed", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("[HTTP] request rejected", fields...)
		default:
			log.Info("[HTTP] request", fields...)
		}
		return err
	}
}
