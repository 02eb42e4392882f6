package service

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/repository/memory"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/testutil"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/voice"
)

const tenant = "ravi_farm_in"

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store      *testutil.MockDocumentStore
	catalog    *i18n.Catalog
	categories *CategoryService
	expenses   *ExpenseService
	plantation *PlantationService
	stay       *StayService
	live       *LiveService
}

// newFixture wires every service over a fresh in-memory store with a ticking clock
func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()

	mem := memory.NewStore(logger)
	t.Cleanup(func() { mem.Close() })
	store := testutil.NewMockDocumentStore(mem)

	catalog, err := i18n.New("en")
	require.NoError(t, err)
	interpreter, err := voice.NewInterpreter()
	require.NoError(t, err)

	f := &fixture{store: store, catalog: catalog}
	f.categories = NewCategoryService(store, catalog, logger)
	f.expenses = NewExpenseService(store, f.categories, catalog, interpreter, logger)
	f.plantation = NewPlantationService(store, catalog, logger)
	f.stay = NewStayService(store, catalog, logger)
	f.live = NewLiveService(store, f.categories, f.expenses, f.plantation, logger)

	clock := ticker(fixedNow)
	f.categories.now = clock
	f.expenses.now = clock
	f.plantation.now = clock
	f.stay.now = clock
	return f
}

// ticker returns a clock advancing one second per call so createdAt values differ
func ticker(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}
