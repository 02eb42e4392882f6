package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
)

// PlantationChartColor fills every bar of the expense-by-activity chart
const PlantationChartColor = "#3b82f6"

// PlantationReport is the income/expense/profit summary of a window
type PlantationReport struct {
	Window  Window          `json:"window"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Profit  decimal.Decimal `json:"profit"`
	Chart   []ChartPoint    `json:"chart"`
}

// ActivityLabeler translates a stored activity key
type ActivityLabeler func(activity string) string

// BuildPlantationReport sums income and expense in w and groups expense by
// activity label in first-seen order. Profit may be negative.
func BuildPlantationReport(records []*domain.PlantationRecord, w Window, label ActivityLabeler) *PlantationReport {
	r := &PlantationReport{
		Window:  w,
		Income:  decimal.Zero,
		Expense: decimal.Zero,
		Chart:   []ChartPoint{},
	}

	index := make(map[string]int)
	for _, rec := range records {
		if rec == nil || !w.Contains(rec.Date) {
			continue
		}
		switch rec.Type {
		case domain.PlantationTypeIncome:
			r.Income = r.Income.Add(rec.Amount)
		case domain.PlantationTypeExpense:
			r.Expense = r.Expense.Add(rec.Amount)

			name := rec.Activity
			if label != nil {
				if l := label(rec.Activity); l != "" {
					name = l
				}
			}
			i, ok := index[name]
			if !ok {
				i = len(r.Chart)
				index[name] = i
				r.Chart = append(r.Chart, ChartPoint{Label: name, Value: decimal.Zero, Color: PlantationChartColor})
			}
			r.Chart[i].Value = r.Chart[i].Value.Add(rec.Amount)
		}
	}
	r.Profit = r.Income.Sub(r.Expense)
	return r
}
