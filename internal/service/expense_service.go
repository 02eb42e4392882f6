package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/export"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/ledger"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/metrics"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/voice"
)

const reportMemoSize = 128

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportFile is a rendered export ready for download or archiving
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Interpretation is the interpreter result plus its display line
type Interpretation struct {
	voice.Result
	Feedback string `json:"feedback"`
}

// ExpenseService handles the expense diary
type ExpenseService struct {
	records     records
	categories  *CategoryService
	catalog     *i18n.Catalog
	interpreter *voice.Interpreter
	memo        *ledger.Memo[*ledger.Rollup]
	now         func() time.Time
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(store domain.DocumentStore, categories *CategoryService, catalog *i18n.Catalog, interpreter *voice.Interpreter, logger zerolog.Logger) *ExpenseService {
	return &ExpenseService{
		records:     records{store: store, logger: logger.With().Str("component", "expense_service").Logger()},
		categories:  categories,
		catalog:     catalog,
		interpreter: interpreter,
		memo:        ledger.NewMemo[*ledger.Rollup](reportMemoSize),
		now:         time.Now,
	}
}

// CreateExpense validates the reviewed draft and stores it. It returns as soon
// as the store accepts the write.
func (s *ExpenseService) CreateExpense(ctx context.Context, tenantID string, input domain.ExpenseInput) (*domain.Expense, error) {
	expense, err := domain.NewExpense(input, s.now())
	if err != nil {
		return nil, err
	}
	id, err := s.records.insert(ctx, domain.RecordTypeExpenses, tenantID, expense)
	if err != nil {
		return nil, err
	}
	expense.ID = id
	return expense, nil
}

// DeleteExpense removes an expense. Deleting a missing id is not an error.
func (s *ExpenseService) DeleteExpense(ctx context.Context, tenantID, id string) error {
	return s.records.remove(ctx, domain.RecordTypeExpenses, tenantID, id)
}

// GetExpenses lists expenses newest first, optionally limited to a window
func (s *ExpenseService) GetExpenses(ctx context.Context, tenantID string, window *ledger.Window) ([]*domain.Expense, error) {
	if window != nil && !window.Valid() {
		return nil, domain.ErrInvalidWindow
	}
	expenses, _, err := listRecords[domain.Expense](ctx, s.records, domain.RecordTypeExpenses, tenantID)
	if err != nil {
		return nil, err
	}
	if window != nil {
		expenses = ledger.FilterExpenses(expenses, *window)
	}
	sortExpenses(expenses)
	return expenses, nil
}

func sortExpenses(expenses []*domain.Expense) {
	newestFirst(expenses, func(e *domain.Expense) int64 { return e.CreatedAt })
}

// GetReport computes the expense report of a window
func (s *ExpenseService) GetReport(ctx context.Context, tenantID string, window ledger.Window, lang i18n.Lang) (*ledger.Rollup, error) {
	if !window.Valid() {
		return nil, domain.ErrInvalidWindow
	}
	expSnap, err := s.records.list(ctx, domain.RecordTypeExpenses, tenantID)
	if err != nil {
		return nil, err
	}
	catSnap, err := s.records.list(ctx, domain.RecordTypeCategories, tenantID)
	if err != nil {
		return nil, err
	}
	return s.rollup(tenantID, expSnap, catSnap, window, lang), nil
}

// rollup computes or recalls the report for a pair of snapshots
func (s *ExpenseService) rollup(tenantID string, expSnap, catSnap *domain.Snapshot, window ledger.Window, lang i18n.Lang) *ledger.Rollup {
	key := ledger.MemoKey{
		Scope:    tenantID,
		Versions: [3]uint64{expSnap.Version, catSnap.Version},
		Window:   window,
		Lang:     string(lang),
	}
	return s.memo.Get(key, func() *ledger.Rollup {
		expenses := decodeSnapshot[domain.Expense](s.records.logger, expSnap)
		set := s.categories.BuildSet(s.categories.decodeCategories(catSnap), lang)
		return ledger.RollupExpenses(expenses, window, set)
	})
}

// ExportExpenses renders the window's expenses as CSV or XLSX
func (s *ExpenseService) ExportExpenses(ctx context.Context, tenantID string, window ledger.Window, format string, lang i18n.Lang) (*ExportFile, error) {
	if !window.Valid() {
		return nil, domain.ErrInvalidWindow
	}
	format = strings.ToLower(format)
	if format != FormatCSV && format != FormatXLSX {
		return nil, domain.ErrInvalidFormat
	}

	expenses, err := s.GetExpenses(ctx, tenantID, &window)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, domain.ErrNoData
	}
	set, _, err := s.categories.GetCategorySet(ctx, tenantID, lang)
	if err != nil {
		return nil, err
	}

	return renderTable(export.ExpenseTable(expenses, set), export.ExpenseFileName(tenantID, format), format, s.catalog.T(lang, i18n.KeyTotal))
}

// Interpret runs the voice interpreter against the tenant's category set
func (s *ExpenseService) Interpret(ctx context.Context, tenantID, text string, lang i18n.Lang) (*Interpretation, error) {
	set, _, err := s.categories.GetCategorySet(ctx, tenantID, lang)
	if err != nil {
		return nil, err
	}

	res := s.interpreter.Interpret(text, set)
	switch {
	case res.MatchedKeyword:
		metrics.RecordInterpretation(metrics.MatchKeyword)
	case res.CategoryID != domain.CategoryOther:
		metrics.RecordInterpretation(metrics.MatchLabel)
	default:
		metrics.RecordInterpretation(metrics.MatchNone)
	}

	return &Interpretation{
		Result:   res,
		Feedback: voice.Feedback(res, set, s.catalog, lang),
	}, nil
}

func renderTable(t *export.Table, name, format, totalLabel string) (*ExportFile, error) {
	switch format {
	case FormatCSV:
		return &ExportFile{Name: name, ContentType: contentTypeCSV, Data: []byte(t.CSV())}, nil
	case FormatXLSX:
		data, err := t.XLSX(totalLabel)
		if err != nil {
			return nil, fmt.Errorf("render workbook: %w", err)
		}
		return &ExportFile{Name: name, ContentType: contentTypeXLSX, Data: data}, nil
	default:
		return nil, domain.ErrInvalidFormat
	}
}
