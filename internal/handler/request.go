package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/ledger"
)

// resolveLang picks the response language from ?lang= or Accept-Language
func resolveLang(c echo.Context, catalog *i18n.Catalog) i18n.Lang {
	return catalog.Resolve(c.QueryParam("lang"), c.Request().Header.Get("Accept-Language"))
}

// parseWindow reads ?year=, the optional ?month= and an optional ?step= that
// moves the window by that many months (or years for a year window). It
// returns nil when no year is given.
func parseWindow(c echo.Context) (*ledger.Window, error) {
	yearParam := c.QueryParam("year")
	monthParam := c.QueryParam("month")
	if yearParam == "" {
		if monthParam != "" || c.QueryParam("step") != "" {
			return nil, domain.ErrInvalidWindow
		}
		return nil, nil
	}

	year, err := strconv.Atoi(yearParam)
	if err != nil {
		return nil, domain.ErrInvalidWindow
	}
	w := ledger.YearWindow(year)
	if monthParam != "" {
		month, err := strconv.Atoi(monthParam)
		if err != nil || month < 1 || month > 12 {
			return nil, domain.ErrInvalidWindow
		}
		w = ledger.MonthWindow(year, month)
	}
	if stepParam := c.QueryParam("step"); stepParam != "" {
		step, err := strconv.Atoi(stepParam)
		if err != nil {
			return nil, domain.ErrInvalidWindow
		}
		w = w.Shift(step)
	}
	if !w.Valid() {
		return nil, domain.ErrInvalidWindow
	}
	return &w, nil
}

// parseAmount parses a decimal field, treating an empty value as zero
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
