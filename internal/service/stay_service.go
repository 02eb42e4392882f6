package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/export"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/ledger"
)

// RecentPaymentCount is how many payments the recent list shows
const RecentPaymentCount = 5

// PaymentInput holds the input for recording a payment
type PaymentInput struct {
	WorkerID string
	Amount   decimal.Decimal
	Note     string
	Date     string
}

// StayService handles workers, daily wages and payments
type StayService struct {
	records records
	catalog *i18n.Catalog
	now     func() time.Time
}

// NewStayService creates a new StayService
func NewStayService(store domain.DocumentStore, catalog *i18n.Catalog, logger zerolog.Logger) *StayService {
	return &StayService{
		records: records{store: store, logger: logger.With().Str("component", "stay_service").Logger()},
		catalog: catalog,
		now:     time.Now,
	}
}

// AddWorker stores a new worker
func (s *StayService) AddWorker(ctx context.Context, tenantID, name string) (*domain.Worker, error) {
	worker, err := domain.NewWorker(name, s.now())
	if err != nil {
		return nil, err
	}
	id, err := s.records.insert(ctx, domain.RecordTypeStayWorkers, tenantID, worker)
	if err != nil {
		return nil, err
	}
	worker.ID = id
	return worker, nil
}

// RemoveWorker deletes a worker. Wage entries and payments are kept.
func (s *StayService) RemoveWorker(ctx context.Context, tenantID, id string) error {
	return s.records.remove(ctx, domain.RecordTypeStayWorkers, tenantID, id)
}

// GetWorkers lists workers in snapshot order
func (s *StayService) GetWorkers(ctx context.Context, tenantID string) ([]*domain.Worker, error) {
	workers, _, err := listRecords[domain.Worker](ctx, s.records, domain.RecordTypeStayWorkers, tenantID)
	return workers, err
}

// SaveWages stores one entry per worker with a non-zero wage for date.
// Entries already written stay written if a later insert fails.
func (s *StayService) SaveWages(ctx context.Context, tenantID, date string, inputs map[string]domain.WageInput) ([]*domain.WageEntry, error) {
	workers, err := s.GetWorkers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	entries, err := domain.BuildWageEntries(workers, inputs, date, s.now())
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		id, err := s.records.insert(ctx, domain.RecordTypeStayRecords, tenantID, e)
		if err != nil {
			return nil, err
		}
		e.ID = id
	}
	return entries, nil
}

// GetWageHistory lists wage entries newest first
func (s *StayService) GetWageHistory(ctx context.Context, tenantID string) ([]*domain.WageEntry, error) {
	entries, _, err := listRecords[domain.WageEntry](ctx, s.records, domain.RecordTypeStayRecords, tenantID)
	if err != nil {
		return nil, err
	}
	return ledger.WageHistory(entries), nil
}

// RecordPayment pays a worker
func (s *StayService) RecordPayment(ctx context.Context, tenantID string, input PaymentInput) (*domain.Payment, error) {
	workerID := strings.TrimSpace(input.WorkerID)
	if workerID == "" {
		return nil, domain.ErrWorkerRequired
	}
	worker, err := s.findWorker(ctx, tenantID, workerID)
	if err != nil {
		return nil, err
	}
	payment, err := domain.NewPayment(worker, input.Amount, input.Note, input.Date, s.now())
	if err != nil {
		return nil, err
	}
	id, err := s.records.insert(ctx, domain.RecordTypeStayPayments, tenantID, payment)
	if err != nil {
		return nil, err
	}
	payment.ID = id
	return payment, nil
}

func (s *StayService) findWorker(ctx context.Context, tenantID, workerID string) (*domain.Worker, error) {
	workers, err := s.GetWorkers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, w := range workers {
		if w.ID == workerID {
			return w, nil
		}
	}
	return nil, domain.ErrWorkerNotFound
}

// GetPayments lists payments in snapshot order, or the most recent ones newest first
func (s *StayService) GetPayments(ctx context.Context, tenantID string, recentOnly bool) ([]*domain.Payment, error) {
	payments, _, err := listRecords[domain.Payment](ctx, s.records, domain.RecordTypeStayPayments, tenantID)
	if err != nil {
		return nil, err
	}
	if recentOnly {
		return ledger.RecentPayments(payments, RecentPaymentCount), nil
	}
	return payments, nil
}

// GetBalances computes earned, paid and balance for every worker
func (s *StayService) GetBalances(ctx context.Context, tenantID string) ([]ledger.WorkerBalance, error) {
	workers, entries, payments, err := s.loadAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ledger.Balances(workers, entries, payments), nil
}

// ExportStay renders wage entries and payments as CSV or XLSX
func (s *StayService) ExportStay(ctx context.Context, tenantID, format string, lang i18n.Lang) (*ExportFile, error) {
	format = strings.ToLower(format)
	if format != FormatCSV && format != FormatXLSX {
		return nil, domain.ErrInvalidFormat
	}
	_, entries, payments, err := s.loadAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 && len(payments) == 0 {
		return nil, domain.ErrNoData
	}
	return renderTable(export.StayTable(entries, payments), export.StayFileName(tenantID, format), format, s.catalog.T(lang, i18n.KeyTotal))
}

func (s *StayService) loadAll(ctx context.Context, tenantID string) ([]*domain.Worker, []*domain.WageEntry, []*domain.Payment, error) {
	workers, _, err := listRecords[domain.Worker](ctx, s.records, domain.RecordTypeStayWorkers, tenantID)
	if err != nil {
		return nil, nil, nil, err
	}
	entries, _, err := listRecords[domain.WageEntry](ctx, s.records, domain.RecordTypeStayRecords, tenantID)
	if err != nil {
		return nil, nil, nil, err
	}
	payments, _, err := listRecords[domain.Payment](ctx, s.records, domain.RecordTypeStayPayments, tenantID)
	if err != nil {
		return nil, nil, nil, err
	}
	return workers, entries, payments, nil
}
