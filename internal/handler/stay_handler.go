package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/service"
)

// StayHandler handles worker stay HTTP requests
type StayHandler struct {
	stayService *service.StayService
	catalog     *i18n.Catalog
}

// NewStayHandler creates a new StayHandler
func NewStayHandler(stayService *service.StayService, catalog *i18n.Catalog) *StayHandler {
	return &StayHandler{stayService: stayService, catalog: catalog}
}

// AddWorkerRequest represents the add worker request body
type AddWorkerRequest struct {
	Name string `json:"name"`
}

// SaveWagesRequest holds one day's wages keyed by worker id
type SaveWagesRequest struct {
	Date    string                      `json:"date"`
	Entries map[string]domain.WageInput `json:"entries"`
}

// RecordPaymentRequest represents the record payment request body
type RecordPaymentRequest struct {
	WorkerID string `json:"workerId"`
	Amount   string `json:"amount"`
	Note     string `json:"note"`
	Date     string `json:"date"`
}

// AddWorker handles POST /api/v1/stay/workers
func (h *StayHandler) AddWorker(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	var req AddWorkerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	worker, err := h.stayService.AddWorker(c.Request().Context(), tenantID, req.Name)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}

	log.Info().Str("tenant_id", tenantID).Str("worker_id", worker.ID).Msg("Worker added")

	return c.JSON(http.StatusCreated, MessageResponse{
		Message: h.catalog.T(lang, i18n.KeyWorkerAdded),
		Data:    worker,
	})
}

// GetWorkers handles GET /api/v1/stay/workers
func (h *StayHandler) GetWorkers(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	workers, err := h.stayService.GetWorkers(c.Request().Context(), tenantID)
	if err != nil {
		return serviceError(c, h.catalog, resolveLang(c, h.catalog), err, i18n.KeySaveError)
	}
	return c.JSON(http.StatusOK, workers)
}

// RemoveWorker handles DELETE /api/v1/stay/workers/:id
func (h *StayHandler) RemoveWorker(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	id := c.Param("id")
	if err := h.stayService.RemoveWorker(c.Request().Context(), tenantID, id); err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeyDeleteError)
	}

	log.Info().Str("tenant_id", tenantID).Str("worker_id", id).Msg("Worker removed")

	return c.JSON(http.StatusOK, MessageResponse{Message: h.catalog.T(lang, i18n.KeyDeleted)})
}

// SaveWages handles POST /api/v1/stay/wages
func (h *StayHandler) SaveWages(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	var req SaveWagesRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	entries, err := h.stayService.SaveWages(c.Request().Context(), tenantID, req.Date, req.Entries)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}

	log.Info().Str("tenant_id", tenantID).Int("entries", len(entries)).Msg("Wages saved")

	return c.JSON(http.StatusCreated, MessageResponse{
		Message: h.catalog.T(lang, i18n.KeySaved),
		Data:    entries,
	})
}

// GetWageHistory handles GET /api/v1/stay/wages
func (h *StayHandler) GetWageHistory(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	entries, err := h.stayService.GetWageHistory(c.Request().Context(), tenantID)
	if err != nil {
		return serviceError(c, h.catalog, resolveLang(c, h.catalog), err, i18n.KeySaveError)
	}
	return c.JSON(http.StatusOK, entries)
}

// RecordPayment handles POST /api/v1/stay/payments
func (h *StayHandler) RecordPayment(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	var req RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, h.catalog.T(lang, i18n.KeyAmountRequired), []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	payment, err := h.stayService.RecordPayment(c.Request().Context(), tenantID, service.PaymentInput{
		WorkerID: req.WorkerID,
		Amount:   amount,
		Note:     req.Note,
		Date:     req.Date,
	})
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}

	log.Info().
		Str("tenant_id", tenantID).
		Str("worker_id", payment.WorkerID).
		Str("amount", payment.Amount.String()).
		Msg("Payment recorded")

	return c.JSON(http.StatusCreated, MessageResponse{
		Message: h.catalog.T(lang, i18n.KeyPaymentSuccess),
		Data:    payment,
	})
}

// GetPayments handles GET /api/v1/stay/payments; ?recent=true returns the latest few
func (h *StayHandler) GetPayments(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	recentOnly := c.QueryParam("recent") == "true"
	payments, err := h.stayService.GetPayments(c.Request().Context(), tenantID, recentOnly)
	if err != nil {
		return serviceError(c, h.catalog, resolveLang(c, h.catalog), err, i18n.KeySaveError)
	}
	return c.JSON(http.StatusOK, payments)
}

// GetBalances handles GET /api/v1/stay/balances
func (h *StayHandler) GetBalances(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	balances, err := h.stayService.GetBalances(c.Request().Context(), tenantID)
	if err != nil {
		return serviceError(c, h.catalog, resolveLang(c, h.catalog), err, i18n.KeySaveError)
	}
	return c.JSON(http.StatusOK, balances)
}

// ExportStay handles GET /api/v1/stay/export?format=
func (h *StayHandler) ExportStay(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	format := c.QueryParam("format")
	if format == "" {
		format = service.FormatCSV
	}

	file, err := h.stayService.ExportStay(c.Request().Context(), tenantID, format, lang)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}
	return sendFile(c, file)
}
