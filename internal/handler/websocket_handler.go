package handler

import (
	"net/http"

	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/service"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/websocket"
)

// WebSocketHandler serves live views over WebSocket
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      middleware.SessionValidator
	liveService    *service.LiveService
	catalog        *i18n.Catalog
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, validator middleware.SessionValidator, liveService *service.LiveService, catalog *i18n.Catalog, allowedOrigins []string) *WebSocketHandler {
	// Build origin lookup map
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		liveService:    liveService,
		catalog:        catalog,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles GET /ws?token=&view=[&year=&month=&lang=]
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	session, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	view, ok := websocket.ParseView(c.QueryParam("view"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown view")
	}
	req := service.ViewRequest{View: view, Lang: resolveLang(c, h.catalog)}
	window, err := parseWindow(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid window")
	}
	if window != nil {
		req.Window = *window
	}
	if err := h.liveService.Validate(session.TenantID, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, session.TenantID, h.hub)
	h.hub.Register(client)

	updates, err := h.liveService.Watch(client.Context(), session.TenantID, req)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", session.TenantID).Str("view", string(view)).Msg("Failed to start live view")
		h.hub.Unregister(client)
		client.Close()
		return nil
	}

	log.Info().
		Str("tenant_id", session.TenantID).
		Str("client_id", client.ID()).
		Str("view", string(view)).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()
	go client.Forward(view, updates)

	return nil
}
