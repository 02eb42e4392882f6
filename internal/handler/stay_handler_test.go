package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/ledger"
)

func addTestWorker(t *testing.T, env *testEnv, name string) string {
	t.Helper()
	rec := env.do(http.MethodPost, "/api/v1/stay/workers", fmt.Sprintf(`{"name":%q}`, name))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return createdID(t, rec)
}

func TestStayWorkers(t *testing.T) {
	env := newTestEnv(t)
	id := addTestWorker(t, env, "Ravi")

	rec := env.do(http.MethodPost, "/api/v1/stay/workers", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var workers []domain.Worker
	decodeBody(t, env.do(http.MethodGet, "/api/v1/stay/workers", ""), &workers)
	require.Len(t, workers, 1)
	assert.Equal(t, "Ravi", workers[0].Name)

	rec = env.do(http.MethodDelete, "/api/v1/stay/workers/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, env.do(http.MethodGet, "/api/v1/stay/workers", ""), &workers)
	assert.Empty(t, workers)
}

func TestSaveWages(t *testing.T) {
	env := newTestEnv(t)
	id := addTestWorker(t, env, "Ravi")

	rec := env.do(http.MethodPost, "/api/v1/stay/wages", fmt.Sprintf(`{"date":"2024-05-01","entries":{%q:{"base":"500","extra":50}}}`, id))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/v1/stay/wages", fmt.Sprintf(`{"date":"2024-05-02","entries":{%q:{"base":"0"}}}`, id))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Enter salary for at least one worker", decodeProblem(t, rec).Detail)

	var history []domain.WageEntry
	decodeBody(t, env.do(http.MethodGet, "/api/v1/stay/wages", ""), &history)
	require.Len(t, history, 1)
	assert.Equal(t, "550", history[0].Total.String())
}

func TestRecordPayment(t *testing.T) {
	env := newTestEnv(t)
	id := addTestWorker(t, env, "Ravi")

	rec := env.do(http.MethodPost, "/api/v1/stay/payments", fmt.Sprintf(`{"workerId":%q,"amount":"200","date":"2024-05-03"}`, id))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body MessageResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "Payment recorded", body.Message)

	rec = env.do(http.MethodPost, "/api/v1/stay/payments", `{"amount":"200"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Choose a worker", decodeProblem(t, rec).Detail)

	rec = env.do(http.MethodPost, "/api/v1/stay/payments", `{"workerId":"ghost","amount":"200"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPayments_Recent(t *testing.T) {
	env := newTestEnv(t)
	id := addTestWorker(t, env, "Ravi")
	for i := 1; i <= 7; i++ {
		rec := env.do(http.MethodPost, "/api/v1/stay/payments", fmt.Sprintf(`{"workerId":%q,"amount":"%d"}`, id, i))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var all, recent []domain.Payment
	decodeBody(t, env.do(http.MethodGet, "/api/v1/stay/payments", ""), &all)
	decodeBody(t, env.do(http.MethodGet, "/api/v1/stay/payments?recent=true", ""), &recent)
	assert.Len(t, all, 7)
	require.Len(t, recent, 5)
	assert.Equal(t, "7", recent[0].Amount.String())
	assert.Equal(t, "3", recent[4].Amount.String())
}

func TestGetBalances(t *testing.T) {
	env := newTestEnv(t)
	id := addTestWorker(t, env, "Ravi")
	env.do(http.MethodPost, "/api/v1/stay/wages", fmt.Sprintf(`{"date":"2024-05-01","entries":{%q:{"base":"500"}}}`, id))
	env.do(http.MethodPost, "/api/v1/stay/payments", fmt.Sprintf(`{"workerId":%q,"amount":"700"}`, id))

	var balances []ledger.WorkerBalance
	rec := env.do(http.MethodGet, "/api/v1/stay/balances", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &balances)
	require.Len(t, balances, 1)
	assert.Equal(t, "-200", balances[0].Balance.String(), "overpaid workers show a negative balance")
}

func TestExportStay(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/stay/export", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	id := addTestWorker(t, env, "Ravi")
	env.do(http.MethodPost, "/api/v1/stay/wages", fmt.Sprintf(`{"date":"2024-05-01","entries":{%q:{"base":"500","extra":"50"}}}`, id))

	rec = env.do(http.MethodGet, "/api/v1/stay/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="milan_farm_report_ravi_farm_in.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, strings.Join([]string{
		"Date,Type,Worker,Amount,Details",
		`2024-05-01,Daily Wage,Ravi,550,"Base: 500 Extra: 50"`,
	}, "\n"), rec.Body.String())
}
