package handler

import (
	"log/slog"
	"time"

	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/logging"
	"github.com/gofiber/fiber/v2"
)

// RequireAuth guards protected routes. It checks the access token only and
// never refreshes; clients call /refresh explicitly.
func (h *AuthHandler) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := h.userService.Authenticate(
			c.UserContext(),
			c.Cookies(AccessTokenCookie),
			c.Cookies(RefreshTokenCookie),
		)
		if err != nil {
			return err
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user attached by RequireAuth, or nil.
func CurrentUser(c *fiber.Ctx) *dto.UserOutput {
	user, _ := c.Locals(userLocalsKey).(*dto.UserOutput)
	return user
}

// RequestLogger puts a request-scoped logger into the user context and logs
// one line per request.
func RequestLogger(base *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		l := base.With(
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"method", c.Method(),
			"path", c.Path(),
		)
		c.SetUserContext(logging.IntoContext(c.UserContext(), l))

		err := c.Next()
		if err != nil {
			// Let the error handler write the response so the status below is final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		l.Info("request", "status", c.Response().StatusCode(), "latency_ms", time.Since(start).Milliseconds())
		return nil
	}
}
