package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/ledger"
)

// PlantationService handles the plantation ledger
type PlantationService struct {
	records records
	catalog *i18n.Catalog
	memo    *ledger.Memo[*ledger.PlantationReport]
	now     func() time.Time
}

// NewPlantationService creates a new PlantationService
func NewPlantationService(store domain.DocumentStore, catalog *i18n.Catalog, logger zerolog.Logger) *PlantationService {
	return &PlantationService{
		records: records{store: store, logger: logger.With().Str("component", "plantation_service").Logger()},
		catalog: catalog,
		memo:    ledger.NewMemo[*ledger.PlantationReport](reportMemoSize),
		now:     time.Now,
	}
}

// CreateRecord stores an income or expense entry, deriving the labour amount
// when no amount was typed
func (s *PlantationService) CreateRecord(ctx context.Context, tenantID string, input domain.PlantationInput) (*domain.PlantationRecord, error) {
	record, err := domain.NewPlantationRecord(input, s.now())
	if err != nil {
		return nil, err
	}
	id, err := s.records.insert(ctx, domain.RecordTypePlantationRecords, tenantID, record)
	if err != nil {
		return nil, err
	}
	record.ID = id
	return record, nil
}

// DeleteRecord removes an entry
func (s *PlantationService) DeleteRecord(ctx context.Context, tenantID, id string) error {
	return s.records.remove(ctx, domain.RecordTypePlantationRecords, tenantID, id)
}

// GetRecords lists entries newest first, optionally limited to a window
func (s *PlantationService) GetRecords(ctx context.Context, tenantID string, window *ledger.Window) ([]*domain.PlantationRecord, error) {
	if window != nil && !window.Valid() {
		return nil, domain.ErrInvalidWindow
	}
	recs, _, err := listRecords[domain.PlantationRecord](ctx, s.records, domain.RecordTypePlantationRecords, tenantID)
	if err != nil {
		return nil, err
	}
	return orderPlantation(recs, window), nil
}

func orderPlantation(recs []*domain.PlantationRecord, window *ledger.Window) []*domain.PlantationRecord {
	if window != nil {
		kept := make([]*domain.PlantationRecord, 0, len(recs))
		for _, r := range recs {
			if window.Contains(r.Date) {
				kept = append(kept, r)
			}
		}
		recs = kept
	}
	newestFirst(recs, func(r *domain.PlantationRecord) int64 { return r.CreatedAt })
	return recs
}

// GetReport computes income, expense and profit for a year
func (s *PlantationService) GetReport(ctx context.Context, tenantID string, year int, lang i18n.Lang) (*ledger.PlantationReport, error) {
	window := ledger.YearWindow(year)
	if !window.Valid() {
		return nil, domain.ErrInvalidWindow
	}
	snap, err := s.records.list(ctx, domain.RecordTypePlantationRecords, tenantID)
	if err != nil {
		return nil, err
	}
	return s.report(tenantID, snap, window, lang), nil
}

func (s *PlantationService) report(tenantID string, snap *domain.Snapshot, window ledger.Window, lang i18n.Lang) *ledger.PlantationReport {
	key := ledger.MemoKey{Scope: tenantID, Versions: [3]uint64{snap.Version}, Window: window, Lang: string(lang)}
	return s.memo.Get(key, func() *ledger.PlantationReport {
		recs := decodeSnapshot[domain.PlantationRecord](s.records.logger, snap)
		return ledger.BuildPlantationReport(recs, window, func(activity string) string {
			return s.catalog.ActivityLabel(lang, activity)
		})
	})
}

// SetClock replaces the service clock used for record timestamps and the year selector
func (s *PlantationService) SetClock(now func() time.Time) {
	s.now = now
}

// GetReportYears lists the years offered by the report selector
func (s *PlantationService) GetReportYears() []int {
	return ledger.ReportYears(s.now())
}
