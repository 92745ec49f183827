package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AuthHandler serves the email-only login flow.
type AuthHandler struct {
	identities *service.IdentityService
	sessions   *auth.SessionManager
	middleware *auth.SessionMiddleware
	cookieName string
	sessionTTL time.Duration
}

// NewAuthHandler constructs handler.
func NewAuthHandler(
	identities *service.IdentityService,
	sessions *auth.SessionManager,
	middleware *auth.SessionMiddleware,
	cookieName string,
	sessionTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		identities: identities,
		sessions:   sessions,
		middleware: middleware,
		cookieName: cookieName,
		sessionTTL: sessionTTL,
	}
}

// ListUsers GET /auth/users. Backs the login picker.
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.identities.ListLoginOptions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUsers(users)})
}

// Login POST /auth/login. Resolves the email into an identity and issues a
// session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	identity, err := h.identities.Login(c.UserContext(), req.Email)
	if err != nil {
		return err
	}

	token, err := h.sessions.Issue(c.UserContext(), *identity)
	if err != nil {
		return apperrors.MapError(err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   int(h.sessionTTL.Seconds()),
	})
	return c.JSON(fiber.Map{"data": dto.LoginResponse{Identity: *identity}})
}

// Logout POST /auth/logout. Revokes the session and clears the cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := h.middleware.TokenFromRequest(c); token != "" {
		_ = h.sessions.Revoke(c.UserContext(), token)
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		HTTPOnly: true,
		MaxAge:   -1,
	})
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

// Me GET /auth/me. Returns the authenticated identity.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("login required")
	}
	return c.JSON(fiber.Map{"data": identity})
}
