package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsHandler(t *testing.T, env *testEnv) *WebSocketHandler {
	t.Helper()
	return NewWebSocketHandler(env.hub, tokenValidator{}, env.services.live, env.catalog, []string{"http://localhost:3000", "https://farmbook.app"})
}

func TestWebSocketHandler_HandleWS_Rejections(t *testing.T) {
	env := newTestEnv(t)
	h := wsHandler(t, env)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing token", "/ws?view=expenses", http.StatusUnauthorized},
		{"invalid token", "/ws?token=invalid-jwt&view=expenses", http.StatusUnauthorized},
		{"unknown view", "/ws?token=" + testToken + "&view=wishlist", http.StatusBadRequest},
		{"report without window", "/ws?token=" + testToken + "&view=expense_report", http.StatusBadRequest},
		{"bad month", "/ws?token=" + testToken + "&view=expenses&year=2024&month=0", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, tt.target, nil), httptest.NewRecorder())

			err := h.HandleWS(c)
			require.Error(t, err)
			httpErr, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, tt.status, httpErr.Code)
		})
	}
}

func TestWebSocketHandler_HandleWS_ValidToken_NoUpgrade(t *testing.T) {
	env := newTestEnv(t)
	h := wsHandler(t, env)

	// Request with valid token but not a WebSocket upgrade request
	req := httptest.NewRequest(http.MethodGet, "/ws?token="+testToken+"&view=expenses", nil)
	c := echo.New().NewContext(req, httptest.NewRecorder())

	// gorilla/websocket returns an error when upgrade fails (no upgrade headers)
	err := h.HandleWS(c)
	assert.Error(t, err)
	_, isHTTPError := err.(*echo.HTTPError)
	assert.False(t, isHTTPError, "auth and view checks pass before the upgrade")
	assert.Equal(t, 0, env.hub.TotalClientCount())
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	env := newTestEnv(t)
	h := wsHandler(t, env)

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:3000", true},
		{"allowed origin https", "https://farmbook.app", true},
		{"disallowed origin", "https://evil.com", false},
		{"empty origin (same-origin)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.expected, h.checkOrigin(req))
		})
	}
}

type wsEvent struct {
	Type    string          `json:"type"`
	Entity  string          `json:"entity"`
	Payload json.RawMessage `json:"payload"`
}

func readEvent(t *testing.T, conn *ws.Conn) wsEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev wsEvent
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestWebSocketHandler_LiveExpenses(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + testToken + "&view=expenses&year=2024"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readEvent(t, conn)
	assert.Equal(t, "expenses.snapshot", first.Type)
	assert.JSONEq(t, `[]`, string(first.Payload))

	rec := env.do(http.MethodPost, "/api/v1/expenses", `{"amount":"100","category":"Food","date":"2024-03-02"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	next := readEvent(t, conn)
	assert.Equal(t, "expenses.snapshot", next.Type)
	var expenses []struct {
		Amount string `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(next.Payload, &expenses))
	require.Len(t, expenses, 1)
	assert.Equal(t, "100", expenses[0].Amount)

	require.Eventually(t, func() bool { return env.hub.ClientCount(testTenant) == 1 }, time.Second, 10*time.Millisecond)
}
