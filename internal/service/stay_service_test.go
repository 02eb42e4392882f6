package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
)

func addWorker(t *testing.T, f *fixture, name string) *domain.Worker {
	t.Helper()
	w, err := f.stay.AddWorker(context.Background(), tenant, name)
	require.NoError(t, err)
	return w
}

func TestAddWorker(t *testing.T) {
	f := newFixture(t)

	w := addWorker(t, f, "  Manju ")
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, "Manju", w.Name)
	assert.Equal(t, "2025-03-14T09:30:01Z", w.JoinedAt)

	_, err := f.stay.AddWorker(context.Background(), tenant, "   ")
	assert.ErrorIs(t, err, domain.ErrNameRequired)
}

func TestSaveWages(t *testing.T) {
	f := newFixture(t)
	manju := addWorker(t, f, "Manju")
	ravi := addWorker(t, f, "Ravi")

	entries, err := f.stay.SaveWages(context.Background(), tenant, "2024-05-01", map[string]domain.WageInput{
		ravi.ID:    {Base: d("500"), Extra: d("50")},
		manju.ID:   {Base: d("0"), Extra: d("0")},
		"ghost-id": {Base: d("100")},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, "Ravi", entries[0].WorkerName)
	assert.True(t, entries[0].Total.Equal(d("550")))

	_, err = f.stay.SaveWages(context.Background(), tenant, "2024-05-02", map[string]domain.WageInput{
		manju.ID: {},
	})
	assert.ErrorIs(t, err, domain.ErrNoWageEntries)

	history, err := f.stay.GetWageHistory(context.Background(), tenant)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	ravi := addWorker(t, f, "Ravi")

	p, err := f.stay.RecordPayment(context.Background(), tenant, PaymentInput{WorkerID: ravi.ID, Amount: d("200"), Note: "advance"})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", p.WorkerName)
	assert.Equal(t, "2025-03-14", p.Date)

	_, err = f.stay.RecordPayment(context.Background(), tenant, PaymentInput{Amount: d("200")})
	assert.ErrorIs(t, err, domain.ErrWorkerRequired)

	_, err = f.stay.RecordPayment(context.Background(), tenant, PaymentInput{WorkerID: "nobody", Amount: d("200")})
	assert.ErrorIs(t, err, domain.ErrWorkerNotFound)

	_, err = f.stay.RecordPayment(context.Background(), tenant, PaymentInput{WorkerID: ravi.ID, Amount: d("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestGetPayments_Recent(t *testing.T) {
	f := newFixture(t)
	ravi := addWorker(t, f, "Ravi")

	var ids []string
	for i := 0; i < 7; i++ {
		p, err := f.stay.RecordPayment(context.Background(), tenant, PaymentInput{WorkerID: ravi.ID, Amount: d("10")})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	all, err := f.stay.GetPayments(context.Background(), tenant, false)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	recent, err := f.stay.GetPayments(context.Background(), tenant, true)
	require.NoError(t, err)
	require.Len(t, recent, RecentPaymentCount)
	assert.Equal(t, ids[6], recent[0].ID)
	assert.Equal(t, ids[2], recent[4].ID)
}

func TestGetBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ravi := addWorker(t, f, "Ravi")
	manju := addWorker(t, f, "Manju")

	_, err := f.stay.SaveWages(ctx, tenant, "2024-05-01", map[string]domain.WageInput{
		ravi.ID:  {Base: d("500"), Extra: d("50")},
		manju.ID: {Base: d("400")},
	})
	require.NoError(t, err)
	_, err = f.stay.SaveWages(ctx, tenant, "2024-05-02", map[string]domain.WageInput{ravi.ID: {Base: d("500")}})
	require.NoError(t, err)
	_, err = f.stay.RecordPayment(ctx, tenant, PaymentInput{WorkerID: ravi.ID, Amount: d("700")})
	require.NoError(t, err)

	balances, err := f.stay.GetBalances(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, balances, 2)

	assert.Equal(t, ravi.ID, balances[0].WorkerID)
	assert.True(t, balances[0].Earned.Equal(d("1050")))
	assert.True(t, balances[0].Paid.Equal(d("700")))
	assert.True(t, balances[0].Balance.Equal(d("350")))

	assert.Equal(t, "Manju", balances[1].Name)
	assert.True(t, balances[1].Balance.Equal(d("400")))
}

func TestRemoveWorker_KeepsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ravi := addWorker(t, f, "Ravi")
	_, err := f.stay.SaveWages(ctx, tenant, "2024-05-01", map[string]domain.WageInput{ravi.ID: {Base: d("500")}})
	require.NoError(t, err)

	require.NoError(t, f.stay.RemoveWorker(ctx, tenant, ravi.ID))

	workers, err := f.stay.GetWorkers(ctx, tenant)
	require.NoError(t, err)
	assert.Empty(t, workers)

	history, err := f.stay.GetWageHistory(ctx, tenant)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestExportStay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stay.ExportStay(ctx, tenant, FormatCSV, i18n.English)
	assert.ErrorIs(t, err, domain.ErrNoData)

	ravi := addWorker(t, f, "Ravi")
	_, err = f.stay.SaveWages(ctx, tenant, "2024-05-01", map[string]domain.WageInput{ravi.ID: {Base: d("500"), Extra: d("50")}})
	require.NoError(t, err)
	_, err = f.stay.RecordPayment(ctx, tenant, PaymentInput{WorkerID: ravi.ID, Amount: d("200"), Note: "advance", Date: "2024-05-03"})
	require.NoError(t, err)

	file, err := f.stay.ExportStay(ctx, tenant, FormatCSV, i18n.English)
	require.NoError(t, err)
	assert.Equal(t, "milan_farm_report_ravi_farm_in.csv", file.Name)
	assert.Equal(t, strings.Join([]string{
		"Date,Type,Worker,Amount,Details",
		`2024-05-03,Payment,Ravi,200,"advance"`,
		`2024-05-01,Daily Wage,Ravi,550,"Base: 500 Extra: 50"`,
	}, "\n"), string(file.Data))
}
