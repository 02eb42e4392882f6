package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
)

// CategoryTotal is the windowed sum of one category
type CategoryTotal struct {
	CategoryID string          `json:"categoryId"`
	Label      string          `json:"label"`
	Color      string          `json:"color"`
	Total      decimal.Decimal `json:"total"`
	Known      bool            `json:"known"`
}

// ChartPoint is one chart series entry
type ChartPoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Color string          `json:"color,omitempty"`
}

// Headline is the three summary tiles of the expense report
type Headline struct {
	Food   decimal.Decimal `json:"food"`
	Salary decimal.Decimal `json:"salary"`
	Other  decimal.Decimal `json:"other"`
}

// Rollup is the expense report for one window
type Rollup struct {
	Window      Window          `json:"window"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
	PerCategory []CategoryTotal `json:"perCategory"`
	Headline    Headline        `json:"headline"`
	Chart       []ChartPoint    `json:"chart"`
}

// CategoryTotal returns the total for id, zero when absent
func (r *Rollup) CategoryTotal(id string) decimal.Decimal {
	for _, c := range r.PerCategory {
		if c.CategoryID == id {
			return c.Total
		}
	}
	return decimal.Zero
}

// FilterExpenses keeps the expenses dated inside w, in input order
func FilterExpenses(expenses []*domain.Expense, w Window) []*domain.Expense {
	out := make([]*domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e != nil && w.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// RollupExpenses aggregates the expenses in w. Every known category gets an entry,
// zero included; expenses whose category is not in the set are summed under their
// raw id after the known ones, so the per-category totals always add up to Total.
func RollupExpenses(expenses []*domain.Expense, w Window, categories *domain.CategorySet) *Rollup {
	if categories == nil {
		categories = domain.NewCategorySet(nil, nil)
	}

	known := categories.All()
	per := make([]CategoryTotal, 0, len(known))
	index := make(map[string]int, len(known))
	for _, c := range known {
		index[c.ID] = len(per)
		per = append(per, CategoryTotal{
			CategoryID: c.ID,
			Label:      c.Label,
			Color:      c.Color,
			Total:      decimal.Zero,
			Known:      true,
		})
	}

	r := &Rollup{Window: w, Total: decimal.Zero}
	for _, e := range FilterExpenses(expenses, w) {
		i, ok := index[e.Category]
		if !ok {
			i = len(per)
			index[e.Category] = i
			per = append(per, CategoryTotal{
				CategoryID: e.Category,
				Label:      categories.Label(e.Category),
				Color:      categories.Color(e.Category),
				Total:      decimal.Zero,
			})
		}
		per[i].Total = per[i].Total.Add(e.Amount)
		r.Total = r.Total.Add(e.Amount)
		r.Count++
	}
	r.PerCategory = per

	r.Headline.Food = r.CategoryTotal(domain.CategoryFood)
	r.Headline.Salary = r.CategoryTotal(domain.CategorySalary)
	r.Headline.Other = r.Total.Sub(r.Headline.Food).Sub(r.Headline.Salary)

	r.Chart = make([]ChartPoint, 0, len(per))
	for _, c := range per {
		if c.Total.IsPositive() {
			r.Chart = append(r.Chart, ChartPoint{Label: c.Label, Value: c.Total, Color: c.Color})
		}
	}
	return r
}
