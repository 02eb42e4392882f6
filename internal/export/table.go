// Package export renders expense and stay records as CSV and XLSX files.
package export

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is one exported line. Amount is rendered in the table's amount column.
type Row struct {
	Date   string
	Cells  []string
	Amount decimal.Decimal
}

// Table is an ordered export with a fixed header. The last column is free text
// and is always quoted in CSV output.
type Table struct {
	Sheet        string
	Header       []string
	AmountColumn int
	Rows         []Row
}

// Total sums the amount column
func (t *Table) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, r := range t.Rows {
		sum = sum.Add(r.Amount)
	}
	return sum
}

func (t *Table) sortByDate(descending bool) {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		if descending {
			return t.Rows[i].Date > t.Rows[j].Date
		}
		return t.Rows[i].Date < t.Rows[j].Date
	})
}

// CSV renders the header and rows joined by '\n' with no trailing newline
func (t *Table) CSV() string {
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, strings.Join(t.Header, ","))
	last := len(t.Header) - 1
	for _, r := range t.Rows {
		fields := make([]string, len(t.Header))
		for i := range fields {
			v := t.cell(r, i)
			if i == last {
				fields[i] = quote(v)
			} else {
				fields[i] = quoteIfNeeded(v)
			}
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}

// cell returns column i of r, inserting the amount at AmountColumn
func (t *Table) cell(r Row, i int) string {
	switch {
	case i == t.AmountColumn:
		return r.Amount.String()
	case i < t.AmountColumn:
		if i < len(r.Cells) {
			return r.Cells[i]
		}
	default:
		if i-1 < len(r.Cells) {
			return r.Cells[i-1]
		}
	}
	return ""
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		return quote(s)
	}
	return s
}
