// Package ledger derives reports from full collection snapshots. Every function is
// pure: same records in, same report out.
package ledger

import (
	"fmt"
	"strings"
	"time"
)

// FirstReportYear is the earliest year offered by the plantation year selector
const FirstReportYear = 2024

// Window selects records by date. Month is 1-12, or 0 for the whole year.
type Window struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
}

// YearWindow covers a whole year
func YearWindow(year int) Window {
	return Window{Year: year}
}

// MonthWindow covers one month of a year
func MonthWindow(year, month int) Window {
	return Window{Year: year, Month: month}
}

// IsMonth reports whether the window covers a single month
func (w Window) IsMonth() bool {
	return w.Month >= 1 && w.Month <= 12
}

// Valid reports whether the window can match any date
func (w Window) Valid() bool {
	return w.Year >= 1 && w.Year <= 9999 && w.Month >= 0 && w.Month <= 12
}

// Prefix is the date prefix that members of the window share: YYYY-MM or YYYY
func (w Window) Prefix() string {
	if w.IsMonth() {
		return fmt.Sprintf("%04d-%02d", w.Year, w.Month)
	}
	return fmt.Sprintf("%04d", w.Year)
}

// Contains reports whether date starts with the window prefix. Malformed dates
// simply fail the match.
func (w Window) Contains(date string) bool {
	return w.Valid() && strings.HasPrefix(date, w.Prefix())
}

// Shift moves the window by n steps: months for a month window, years otherwise
func (w Window) Shift(n int) Window {
	if !w.IsMonth() {
		return Window{Year: w.Year + n}
	}
	idx := w.Year*12 + (w.Month - 1) + n
	return Window{Year: idx / 12, Month: idx%12 + 1}
}

func (w Window) String() string {
	return w.Prefix()
}

// ReportYears lists FirstReportYear through the year after now
func ReportYears(now time.Time) []int {
	last := now.Year() + 1
	if last < FirstReportYear {
		last = FirstReportYear
	}
	years := make([]int, 0, last-FirstReportYear+1)
	for y := FirstReportYear; y <= last; y++ {
		years = append(years, y)
	}
	return years
}
