package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/repository/memory"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/service"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/testutil"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/voice"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/websocket"
)

var testNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

const (
	testToken  = "good-token"
	testTenant = "ravi_farm_in"
)

// tokenValidator accepts testToken for ravi@farm.in and rejects everything else
type tokenValidator struct{}

func (tokenValidator) ValidateToken(ctx context.Context, token string) (*domain.Session, error) {
	if token != testToken {
		return nil, errors.New("invalid token")
	}
	return domain.NewSession("auth0|ravi", "ravi@farm.in"), nil
}

type testEnv struct {
	e        *echo.Echo
	store    *testutil.MockDocumentStore
	archive  *testutil.MockArchiveRepository
	catalog  *i18n.Catalog
	services struct {
		categories *service.CategoryService
		expenses   *service.ExpenseService
		plantation *service.PlantationService
		stay       *service.StayService
		live       *service.LiveService
	}
	hub *websocket.Hub
}

// newTestEnv mounts every route over an in-memory store
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	mem := memory.NewStore(logger)
	t.Cleanup(func() { mem.Close() })

	catalog, err := i18n.New("en")
	require.NoError(t, err)
	interpreter, err := voice.NewInterpreter()
	require.NoError(t, err)

	env := &testEnv{
		e:       echo.New(),
		store:   testutil.NewMockDocumentStore(mem),
		archive: testutil.NewMockArchiveRepository(),
		catalog: catalog,
		hub:     websocket.NewHub(),
	}
	t.Cleanup(env.hub.CloseAll)

	s := &env.services
	s.categories = service.NewCategoryService(env.store, catalog, logger)
	s.expenses = service.NewExpenseService(env.store, s.categories, catalog, interpreter, logger)
	s.plantation = service.NewPlantationService(env.store, catalog, logger)
	s.plantation.SetClock(func() time.Time { return testNow })
	s.stay = service.NewStayService(env.store, catalog, logger)
	s.live = service.NewLiveService(env.store, s.categories, s.expenses, s.plantation, logger)
	archiveService := service.NewArchiveService(env.archive, s.expenses, s.stay, 10*time.Minute, logger)
	archiveService.SetEventPublisher(env.hub)

	limiter := middleware.NewRateLimiterWithConfig(100, 100)
	t.Cleanup(limiter.Stop)

	RegisterRoutes(env.e, middleware.NewAuthMiddleware(tokenValidator{}), limiter, Handlers{
		Auth:       NewAuthHandler(catalog),
		Voice:      NewVoiceHandler(s.expenses, catalog),
		Category:   NewCategoryHandler(s.categories, catalog),
		Expense:    NewExpenseHandler(s.expenses, catalog),
		Plantation: NewPlantationHandler(s.plantation, catalog),
		Stay:       NewStayHandler(s.stay, catalog),
		Export:     NewExportHandler(archiveService, catalog),
	})
	ws := NewWebSocketHandler(env.hub, tokenValidator{}, s.live, catalog, []string{"http://localhost:3000"})
	env.e.GET("/ws", ws.HandleWS)

	return env
}

// do sends an authenticated request through the router
func (env *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

// createdID extracts data.id from a MessageResponse body
func createdID(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
		Data    struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	decodeBody(t, rec, &body)
	require.NotEmpty(t, body.Data.ID)
	return body.Data.ID
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var p ProblemDetails
	decodeBody(t, rec, &p)
	return p
}
