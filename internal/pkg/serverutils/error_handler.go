package serverutils

import (
	"errors"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors surfaced by handlers into the
// shared response envelope. Application errors carry their own status;
// anything else is reported as an internal error without leaking detail.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Status() >= fiber.StatusInternalServerError {
				log.Error("http", "request failed", map[string]interface{}{
					"path":  c.Path(),
					"error": appErr.Error(),
				})
			}
			return c.Status(appErr.Status()).JSON(Response{
				Success: false,
				Message: appErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(Response{
				Success: false,
				Message: fiberErr.Message,
			})
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":  c.Path(),
			"error": err.Error(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(Response{
			Success: false,
			Message: "internal server error",
		})
	}
}
