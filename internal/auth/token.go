package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenCodec signs and verifies session tokens. The cookie value handed to
// the browser is a signed reference to the server-side session record, so the
// token stays opaque: it carries no identity data of its own.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec builds a codec for the given secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// sessionClaims describes the signed token payload.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Sign produces a signed token referencing the session id.
func (c *TokenCodec) Sign(sessionID string) (string, error) {
	claims := &sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Parse validates a token and returns the referenced session id. Expiry is
// not encoded in the token; the session store enforces the idle timeout.
func (c *TokenCodec) Parse(tokenStr string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return "", errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return "", errors.New("invalid token claims")
	}
	return claims.SessionID, nil
}
