package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
)

// AuthHandler exposes the caller's session. Sign-in and sign-up happen on the
// identity provider's hosted pages.
type AuthHandler struct {
	catalog *i18n.Catalog
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(catalog *i18n.Catalog) *AuthHandler {
	return &AuthHandler{catalog: catalog}
}

// SessionResponse represents the current session in API responses
type SessionResponse struct {
	Subject  string    `json:"subject"`
	Email    string    `json:"email,omitempty"`
	TenantID string    `json:"tenantId"`
	Lang     i18n.Lang `json:"lang"`
}

// Session handles GET /api/v1/session
func (h *AuthHandler) Session(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	return c.JSON(http.StatusOK, SessionResponse{
		Subject:  session.Subject,
		Email:    session.Email,
		TenantID: session.TenantID,
		Lang:     resolveLang(c, h.catalog),
	})
}

// Logout handles POST /api/v1/auth/logout.
// Tokens are stateless; the client discards its token and the provider ends its session.
func (h *AuthHandler) Logout(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	log.Info().
		Str("tenant_id", session.TenantID).
		Str("subject", session.Subject).
		Msg("User logged out")

	return c.NoContent(http.StatusNoContent)
}
