package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SessionKey is the context key for the authenticated session
	SessionKey contextKey = "session"
)

// SessionValidator turns a bearer token into a session
type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.Session, error)
}

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator SessionValidator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Authenticate returns an Echo middleware that validates JWT tokens and stores
// the caller's session in the request context
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "missing authorization header")
			}

			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				return unauthorizedError(c, "invalid authorization header format")
			}

			session, err := m.validator.ValidateToken(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token")
			}

			ctx := context.WithValue(c.Request().Context(), SessionKey, session)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetSession extracts the session from the context
func GetSession(c echo.Context) *domain.Session {
	if session, ok := c.Request().Context().Value(SessionKey).(*domain.Session); ok {
		return session
	}
	return nil
}

// GetTenantID returns the tenant of the authenticated caller, or ""
func GetTenantID(c echo.Context) string {
	if session := GetSession(c); session != nil {
		return session.TenantID
	}
	return ""
}

// WithSession returns a copy of ctx carrying session
func WithSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}
