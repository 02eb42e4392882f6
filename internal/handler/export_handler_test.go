package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/service"
)

func TestArchiveExport(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/api/v1/expenses", `{"amount":"100","category":"Food","date":"2024-03-02"}`)

	rec := env.do(http.MethodPost, "/api/v1/exports", `{"kind":"expenses","year":2024,"month":3}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body service.ArchivedExport
	decodeBody(t, rec, &body)
	assert.Equal(t, "expenses_ravi_farm_in.csv", body.Name)
	assert.True(t, strings.HasPrefix(body.ObjectPath, testTenant+"/"))
	assert.Contains(t, body.URL, "expires=600")

	data, ok := env.archive.Get(body.ObjectPath)
	require.True(t, ok)
	assert.Contains(t, string(data), "2024-03-02,General,Food,100")
}

func TestArchiveExport_Errors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/exports", `{"kind":"expenses","year":2024,"month":13}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/exports", `{"kind":"stay"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/exports", `{"kind":"photos"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArchiveExport_Disabled(t *testing.T) {
	env := newTestEnv(t)
	catalog, err := i18n.New("en")
	require.NoError(t, err)

	archive := service.NewArchiveService(nil, env.services.expenses, env.services.stay, time.Minute, zerolog.Nop())
	h := NewExportHandler(archive, catalog)
	env.e.POST("/disabled/exports", h.Archive, middleware.NewAuthMiddleware(tokenValidator{}).Authenticate())

	rec := env.do(http.MethodPost, "/disabled/exports", `{"kind":"stay"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, ErrorTypeUnavailable, decodeProblem(t, rec).Type)
}
