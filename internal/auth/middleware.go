package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// SessionMiddleware resolves the session token into an identity and makes it
// available to handlers. No ambient lookup happens past this point: handlers
// read the identity once and pass it into services explicitly.
type SessionMiddleware struct {
	sessions   *SessionManager
	cookieName string
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(sessions *SessionManager, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, cookieName: cookieName}
}

// Handle enforces authentication for protected routes.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	token := m.TokenFromRequest(c)
	if token == "" {
		return apperrors.NewUnauthorized("login required")
	}

	identity, err := m.sessions.Resolve(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return apperrors.NewUnauthorized("session expired")
		}
		return apperrors.MapError(err)
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// TokenFromRequest extracts the session token from the cookie or, as a
// fallback, a bearer authorization header.
func (m *SessionMiddleware) TokenFromRequest(c *fiber.Ctx) string {
	if cookie := c.Cookies(m.cookieName); cookie != "" {
		return cookie
	}
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}
