package handler

import (
	"time"

	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/dto"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/service"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/logging"
	"github.com/gofiber/fiber/v2"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	userLocalsKey = "user"
)

type AuthHandler struct {
	userService  *service.UserService
	validator    *Validator
	cookieMaxAge time.Duration
}

func NewAuthHandler(userService *service.UserService, cookieMaxAge time.Duration) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		validator:    NewValidator(),
		cookieMaxAge: cookieMaxAge,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid input")
	}
	if err := h.validator.Struct(input); err != nil {
		return err
	}

	ctx := c.UserContext()
	res, err := h.userService.Register(ctx, input)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("register_success", "user_id", res.User.ID)
	h.setAuthCookies(c, res)
	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{User: res.User, Auth: true})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid input")
	}
	if err := h.validator.Struct(input); err != nil {
		return err
	}

	ctx := c.UserContext()
	res, err := h.userService.Login(ctx, input)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("login_success", "user_id", res.User.ID)
	h.setAuthCookies(c, res)
	return c.Status(fiber.StatusOK).JSON(dto.AuthResponse{User: res.User, Auth: true})
}

// Logout needs only the refresh cookie; an expired access token must not block it.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.userService.Logout(c.UserContext(), c.Cookies(RefreshTokenCookie)); err != nil {
		return err
	}

	h.clearAuthCookies(c)
	return c.Status(fiber.StatusOK).JSON(dto.AuthResponse{User: nil, Auth: false})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	res, err := h.userService.Refresh(c.UserContext(), c.Cookies(RefreshTokenCookie))
	if err != nil {
		return err
	}

	h.setAuthCookies(c, res)
	return c.Status(fiber.StatusOK).JSON(dto.AuthResponse{User: res.User, Auth: true})
}

// Me returns the user resolved by RequireAuth.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(dto.AuthResponse{User: CurrentUser(c), Auth: true})
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, res *dto.AuthResult) {
	c.Cookie(h.authCookie(AccessTokenCookie, res.Tokens.AccessToken))
	c.Cookie(h.authCookie(RefreshTokenCookie, res.Tokens.RefreshToken))
}

// clearAuthCookies expires both cookies using the attributes they were set with.
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		cookie := h.authCookie(name, "")
		cookie.MaxAge = 0
		cookie.Expires = time.Unix(0, 0)
		c.Cookie(cookie)
	}
}

// The browser-side lifetime is independent of the token expiry embedded in the JWT.
func (h *AuthHandler) authCookie(name, value string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.cookieMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	}
}
