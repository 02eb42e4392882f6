package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/ledger"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/service"
)

// ExportHandler archives exports to object storage
type ExportHandler struct {
	archiveService *service.ArchiveService
	catalog        *i18n.Catalog
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(archiveService *service.ArchiveService, catalog *i18n.Catalog) *ExportHandler {
	return &ExportHandler{archiveService: archiveService, catalog: catalog}
}

// ArchiveExportRequest represents the archive request body.
// Year and Month select the window for expense exports.
type ArchiveExportRequest struct {
	Kind   string `json:"kind"`
	Format string `json:"format"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
}

// Archive handles POST /api/v1/exports
func (h *ExportHandler) Archive(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	var req ArchiveExportRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.Format == "" {
		req.Format = service.FormatCSV
	}

	archiveReq := service.ArchiveRequest{Kind: req.Kind, Format: req.Format, Lang: lang}
	if req.Kind == service.ArchiveKindExpenses {
		w := ledger.YearWindow(req.Year)
		if req.Month != 0 {
			w = ledger.MonthWindow(req.Year, req.Month)
		}
		if !w.Valid() {
			return serviceError(c, h.catalog, lang, domain.ErrInvalidWindow, i18n.KeySaveError)
		}
		archiveReq.Window = w
	}

	archived, err := h.archiveService.Archive(c.Request().Context(), tenantID, archiveReq)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}
	return c.JSON(http.StatusCreated, archived)
}
