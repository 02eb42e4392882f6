package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/service"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
	catalog         *i18n.Catalog
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService, catalog *i18n.Catalog) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, catalog: catalog}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Label string `json:"label"`
}

// GetCategories handles GET /api/v1/categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	set, _, err := h.categoryService.GetCategorySet(c.Request().Context(), tenantID, lang)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}
	return c.JSON(http.StatusOK, set.All())
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	lang := resolveLang(c, h.catalog)

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), tenantID, req.Label)
	if err != nil {
		return serviceError(c, h.catalog, lang, err, i18n.KeySaveError)
	}

	log.Info().Str("tenant_id", tenantID).Str("category_id", category.ID).Msg("Category created")

	return c.JSON(http.StatusCreated, MessageResponse{
		Message: h.catalog.T(lang, i18n.KeyCategoryAdded),
		Data:    category,
	})
}
