package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/service"
)

// ExpenseHandler handles expense diary HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	catalog        *i18n.Catalog
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService, catalog *i18n.Catalog) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, catalog: catalog}
}

// CreateExpenseRequest represents the create expense request body
type CreateExpenseRequest struct {
	Property   string `json:"property"`
	Amount     string `json:"amount"`
	Category   string `json:"category"`
	Note       string `json:"note"`
	Transcript string `json:"transcript"`
	Date       string `json:"date"`
}

// CreateExpense handles POST /api/v1/expenses
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, h.catalog.T(lang, i18n.KeyAmountRequired), []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	expense, err := h.expenseService.CreateExpense(c.Request().Context(), tenantID, domain.ExpenseInput{
		Property:   req.Property,
		Amount:     amount,
		Category:   req.Category,
		Note:       req.Note,
		Transcript: req.Transcript,
		Date:       req.Date,
	})
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}

	log.Info().Str("tenant_id", tenantID).Str("expense_id", expense.ID).Str("category", expense.Category).Msg("Expense created")

	return c.JSON(http.StatusCreated, MessageResponse{
		Message: h.catalog.T(lang, i18n.KeySaved),
		Data:    expense,
	})
}

// GetExpenses handles GET /api/v1/expenses with optional ?year= and ?month=
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	window, err := parseWindow(c)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}

	expenses, err := h.expenseService.GetExpenses(c.Request().Context(), tenantID, window)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}
	return c.JSON(http.StatusOK, expenses)
}

// DeleteExpense handles DELETE /api/v1/expenses/:id
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	id := c.Param("id")
	if err := h.expenseService.DeleteExpense(c.Request().Context(), tenantID, id); err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeyDeleteError)
	}

	log.Info().Str("tenant_id", tenantID).Str("expense_id", id).Msg("Expense deleted")

	return c.JSON(http.StatusOK, MessageResponse{Message: h.catalog.T(lang, i18n.KeyDeleted)})
}

// GetReport handles GET /api/v1/expenses/report?year=&month=&step=
func (h *ExpenseHandler) GetReport(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	window, err := parseWindow(c)
	if err == nil && window == nil {
		err = domain.ErrInvalidWindow
	}
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}

	report, err := h.expenseService.GetReport(c.Request().Context(), tenantID, *window, lang)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}
	return c.JSON(http.StatusOK, report)
}

// ExportExpenses handles GET /api/v1/expenses/export?year=&month=&format=
func (h *ExpenseHandler) ExportExpenses(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	window, err := parseWindow(c)
	if err == nil && window == nil {
		err = domain.ErrInvalidWindow
	}
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}

	format := c.QueryParam("format")
	if format == "" {
		format = service.FormatCSV
	}

	file, err := h.expenseService.ExportExpenses(c.Request().Context(), tenantID, *window, format, lang)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}
	return sendFile(c, file)
}

// sendFile writes an export as a download
func sendFile(c echo.Context, file *service.ExportFile) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}
