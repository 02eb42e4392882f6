package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
)

// CategoryService manages custom categories and builds the merged category set
type CategoryService struct {
	records records
	catalog *i18n.Catalog
	now     func() time.Time
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(store domain.DocumentStore, catalog *i18n.Catalog, logger zerolog.Logger) *CategoryService {
	return &CategoryService{
		records: records{store: store, logger: logger.With().Str("component", "category_service").Logger()},
		catalog: catalog,
		now:     time.Now,
	}
}

// CreateCategory stores a custom category with a random color
func (s *CategoryService) CreateCategory(ctx context.Context, tenantID, label string) (*domain.CustomCategory, error) {
	category, err := domain.NewCustomCategory(label, s.now().UnixMilli())
	if err != nil {
		return nil, err
	}
	id, err := s.records.insert(ctx, domain.RecordTypeCategories, tenantID, category)
	if err != nil {
		return nil, err
	}
	category.ID = id
	return category, nil
}

// GetCategorySet returns built-in and custom categories merged for lang, with the
// version of the custom category snapshot it was built from
func (s *CategoryService) GetCategorySet(ctx context.Context, tenantID string, lang i18n.Lang) (*domain.CategorySet, uint64, error) {
	custom, version, err := listRecords[domain.CustomCategory](ctx, s.records, domain.RecordTypeCategories, tenantID)
	if err != nil {
		return nil, 0, err
	}
	return s.BuildSet(custom, lang), version, nil
}

// BuildSet merges custom categories with the built-ins labelled in lang
func (s *CategoryService) BuildSet(custom []*domain.CustomCategory, lang i18n.Lang) *domain.CategorySet {
	return domain.NewCategorySet(s.catalog.CategoryLabel(lang), custom)
}

// decodeCategories turns a categories snapshot into custom categories
func (s *CategoryService) decodeCategories(snap *domain.Snapshot) []*domain.CustomCategory {
	return decodeSnapshot[domain.CustomCategory](s.records.logger, snap)
}
