package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/service"
)

// PlantationHandler handles plantation ledger HTTP requests
type PlantationHandler struct {
	plantationService *service.PlantationService
	catalog           *i18n.Catalog
}

// NewPlantationHandler creates a new PlantationHandler
func NewPlantationHandler(plantationService *service.PlantationService, catalog *i18n.Catalog) *PlantationHandler {
	return &PlantationHandler{plantationService: plantationService, catalog: catalog}
}

// CreatePlantationRecordRequest represents the create record request body.
// Amount may be omitted for labour expenses; it is then days x people x wage.
type CreatePlantationRecordRequest struct {
	Type          string `json:"type"`
	Activity      string `json:"activity"`
	Date          string `json:"date"`
	Amount        string `json:"amount,omitempty"`
	DurationDays  string `json:"durationDays,omitempty"`
	PeopleCount   string `json:"peopleCount,omitempty"`
	WagePerPerson string `json:"wagePerPerson,omitempty"`
	Note          string `json:"note"`
}

// CreateRecord handles POST /api/v1/plantation/records
func (h *PlantationHandler) CreateRecord(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	var req CreatePlantationRecordRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := domain.PlantationInput{
		Type:     domain.PlantationType(req.Type),
		Activity: req.Activity,
		Date:     req.Date,
		Note:     req.Note,
	}

	var invalid []ValidationError
	parse := func(field, value string) decimal.Decimal {
		d, err := parseAmount(value)
		if err != nil {
			invalid = append(invalid, ValidationError{Field: field, Message: "Must be a valid decimal number"})
		}
		return d
	}
	if strings.TrimSpace(req.Amount) != "" {
		amount := parse("amount", req.Amount)
		input.Amount = &amount
	}
	input.DurationDays = parse("durationDays", req.DurationDays)
	input.PeopleCount = parse("peopleCount", req.PeopleCount)
	input.WagePerPerson = parse("wagePerPerson", req.WagePerPerson)
	if len(invalid) > 0 {
		return NewValidationError(c, h.catalog.T(lang, i18n.KeyValidationError), invalid)
	}

	record, err := h.plantationService.CreateRecord(c.Request().Context(), tenantID, input)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}

	log.Info().
		Str("tenant_id", tenantID).
		Str("record_id", record.ID).
		Str("type", string(record.Type)).
		Str("activity", record.Activity).
		Msg("Plantation record created")

	return c.JSON(http.StatusCreated, MessageResponse{
		Message: h.catalog.T(lang, i18n.KeySaved),
		Data:    record,
	})
}

// GetRecords handles GET /api/v1/plantation/records with optional ?year= and ?month=
func (h *PlantationHandler) GetRecords(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	window, err := parseWindow(c)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}

	records, err := h.plantationService.GetRecords(c.Request().Context(), tenantID, window)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}
	return c.JSON(http.StatusOK, records)
}

// DeleteRecord handles DELETE /api/v1/plantation/records/:id
func (h *PlantationHandler) DeleteRecord(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	id := c.Param("id")
	if err := h.plantationService.DeleteRecord(c.Request().Context(), tenantID, id); err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeyDeleteError)
	}

	log.Info().Str("tenant_id", tenantID).Str("record_id", id).Msg("Plantation record deleted")

	return c.JSON(http.StatusOK, MessageResponse{Message: h.catalog.T(lang, i18n.KeyDeleted)})
}

// GetReport handles GET /api/v1/plantation/report?year=
func (h *PlantationHandler) GetReport(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return serviceError(c, h.catalog, lang, domain.ErrInvalidWindow, i18n.KeySaveError)
	}

	report, err := h.plantationService.GetReport(c.Request().Context(), tenantID, year, lang)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}
	return c.JSON(http.StatusOK, report)
}

// GetReportYears handles GET /api/v1/plantation/years
func (h *PlantationHandler) GetReportYears(c echo.Context) error {
	return c.JSON(http.StatusOK, h.plantationService.GetReportYears())
}
