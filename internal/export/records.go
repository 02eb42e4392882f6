package export

import (
	"fmt"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
)

const (
	RowTypeDailyWage = "Daily Wage"
	RowTypePayment   = "Payment"
)

// ExpenseTable lists expenses oldest first with category labels resolved
func ExpenseTable(expenses []*domain.Expense, categories *domain.CategorySet) *Table {
	if categories == nil {
		categories = domain.NewCategorySet(nil, nil)
	}
	t := &Table{
		Sheet:        "Expenses",
		Header:       []string{"Date", "Property", "Category", "Amount", "Note"},
		AmountColumn: 3,
		Rows:         make([]Row, 0, len(expenses)),
	}
	for _, e := range expenses {
		if e == nil {
			continue
		}
		t.Rows = append(t.Rows, Row{
			Date:   e.Date,
			Cells:  []string{e.Date, e.Property, categories.Label(e.Category), e.Note},
			Amount: e.Amount,
		})
	}
	t.sortByDate(false)
	return t
}

// StayTable merges wage entries and payments newest first
func StayTable(entries []*domain.WageEntry, payments []*domain.Payment) *Table {
	t := &Table{
		Sheet:        "Stay",
		Header:       []string{"Date", "Type", "Worker", "Amount", "Details"},
		AmountColumn: 3,
		Rows:         make([]Row, 0, len(entries)+len(payments)),
	}
	for _, e := range entries {
		if e == nil {
			continue
		}
		t.Rows = append(t.Rows, Row{
			Date:   e.Date,
			Cells:  []string{e.Date, RowTypeDailyWage, e.WorkerName, fmt.Sprintf("Base: %s Extra: %s", e.Base, e.Extra)},
			Amount: e.Total,
		})
	}
	for _, p := range payments {
		if p == nil {
			continue
		}
		t.Rows = append(t.Rows, Row{
			Date:   p.Date,
			Cells:  []string{p.Date, RowTypePayment, p.WorkerName, p.Note},
			Amount: p.Amount,
		})
	}
	t.sortByDate(true)
	return t
}

// ExpenseFileName is the download name of a tenant's expense export
func ExpenseFileName(tenantID, ext string) string {
	return fmt.Sprintf("expenses_%s.%s", tenantID, ext)
}

// StayFileName is the download name of a tenant's stay export
func StayFileName(tenantID, ext string) string {
	return fmt.Sprintf("milan_farm_report_%s.%s", tenantID, ext)
}
