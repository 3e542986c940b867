package handler

import (
	"errors"

	autherror "github.com/AnthoniusHendriyanto/blog-auth-service/internal/errors"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/logging"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler turns service errors into JSON responses. Store failures are
// logged with their cause and reported without it.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	status := autherror.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		logging.FromContext(c.UserContext()).Error("request_failed", "error", err)
	}

	return c.Status(status).JSON(fiber.Map{"error": autherror.PublicMessage(err)})
}
