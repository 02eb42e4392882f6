package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/service"
)

// VoiceHandler turns dictated transcripts into expense drafts
type VoiceHandler struct {
	expenseService *service.ExpenseService
	catalog        *i18n.Catalog
}

// NewVoiceHandler creates a new VoiceHandler
func NewVoiceHandler(expenseService *service.ExpenseService, catalog *i18n.Catalog) *VoiceHandler {
	return &VoiceHandler{expenseService: expenseService, catalog: catalog}
}

// InterpretRequest represents the interpret request body
type InterpretRequest struct {
	Text string `json:"text"`
}

// Interpret handles POST /api/v1/voice/interpret.
// Nothing is stored; the client confirms the draft with POST /expenses.
func (h *VoiceHandler) Interpret(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	var req InterpretRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.expenseService.Interpret(c.Request().Context(), tenantID, req.Text, lang)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeyValidationError)
	}
	return c.JSON(http.StatusOK, result)
}
