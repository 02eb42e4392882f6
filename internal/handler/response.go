package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://farmbook.app/errors/validation"
	ErrorTypeNotFound     = "https://farmbook.app/errors/not-found"
	ErrorTypeUnauthorized = "https://farmbook.app/errors/unauthorized"
	ErrorTypeUnavailable  = "https://farmbook.app/errors/unavailable"
	ErrorTypeInternal     = "https://farmbook.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnavailableError creates a service unavailable error response
func NewUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// fieldErrors maps validation errors to the request field they concern and
// the message key shown to the user
var fieldErrors = []struct {
	err   error
	field string
	key   i18n.Key
}{
	{domain.ErrInvalidAmount, "amount", i18n.KeyAmountRequired},
	{domain.ErrCategoryRequired, "category", i18n.KeyCategoryRequired},
	{domain.ErrNoWageEntries, "entries", i18n.KeyEnterSalary},
	{domain.ErrNegativeWage, "entries", i18n.KeyEnterSalary},
	{domain.ErrWorkerRequired, "workerId", i18n.KeyWorkerRequired},
	{domain.ErrNameRequired, "name", i18n.KeyValidationError},
	{domain.ErrNameTooLong, "name", i18n.KeyValidationError},
	{domain.ErrInvalidDate, "date", i18n.KeyValidationError},
	{domain.ErrInvalidType, "type", i18n.KeyValidationError},
	{domain.ErrInvalidActivity, "activity", i18n.KeyValidationError},
	{domain.ErrInvalidWindow, "year", i18n.KeyValidationError},
	{domain.ErrInvalidFormat, "format", i18n.KeyValidationError},
}

// serviceError writes the ProblemDetails response for a service error.
// Unexpected failures are logged and reported with the transient message failKey.
func serviceError(c echo.Context, catalog *i18n.Catalog, lang i18n.Lang, err error, failKey i18n.Key) error {
	switch {
	case errors.Is(err, domain.ErrTenantRequired):
		return NewUnauthorizedError(c, "Authentication required")
	case errors.Is(err, domain.ErrNoData):
		return NewNotFoundError(c, catalog.T(lang, i18n.KeyNoData))
	case errors.Is(err, domain.ErrWorkerNotFound):
		return NewNotFoundError(c, catalog.T(lang, i18n.KeyWorkerRequired))
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, err.Error())
	case errors.Is(err, domain.ErrArchiveDisabled):
		return NewUnavailableError(c, "Export archive is not configured")
	}

	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			message := catalog.T(lang, fe.key)
			return NewValidationError(c, message, []ValidationError{{Field: fe.field, Message: err.Error()}})
		}
	}
	if domain.IsValidationError(err) {
		return NewValidationError(c, catalog.T(lang, i18n.KeyValidationError), nil)
	}

	log.Error().Err(err).
		Str("tenant_id", middleware.GetTenantID(c)).
		Str("path", c.Request().URL.Path).
		Msg("Request failed")
	return NewInternalError(c, catalog.T(lang, failKey))
}

// MessageResponse carries a localized confirmation alongside the created resource
type MessageResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
