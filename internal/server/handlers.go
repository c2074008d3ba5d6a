package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/luislealdev/nine-minutes-bot-api/internal/survey"
)

// InboundEvent is one applicant message as delivered by the gateway.
type InboundEvent struct {
	From        string `mapstructure:"from"`
	Message     string `mapstructure:"message"`
	Body        string `mapstructure:"body"`
	DisplayName string `mapstructure:"displayName"`
}

// Text returns the message body regardless of which field the gateway used.
func (ev *InboundEvent) Text() string {
	if ev.Message != "" {
		return ev.Message
	}
	return ev.Body
}

// handleInbound accepts one webhook delivery. Both the flat shape
// {from, message} and the WAHA envelope {payload: {from, body}} are
// accepted; events missing the address or the text are rejected before any
// state is touched.
func (s *Server) handleInbound(c echo.Context) error {
	var raw map[string]any
	if err := c.Bind(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid request body"})
	}

	if payload, ok := raw["payload"].(map[string]any); ok {
		raw = payload
	}

	var ev InboundEvent
	if err := mapstructure.Decode(raw, &ev); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid event shape"})
	}

	address := strings.TrimSpace(ev.From)
	text := strings.TrimSpace(ev.Text())
	if address == "" || text == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "from and message are required"})
	}

	if err := s.engine.HandleMessage(c.Request().Context(), address, text); err != nil {
		s.logger.Error("handling inbound message", zap.String("address", address), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]any{"ok": false})
	}

	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

type startRequest struct {
	From string `json:"from"`
}

// handleStart creates a conversation for a bare address and sends the first
// question. An already-active conversation is a 409, not a mutation.
func (s *Server) handleStart(c echo.Context) error {
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid request body"})
	}

	address := strings.TrimSpace(req.From)
	if address == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"ok": false, "error": "from is required"})
	}

	err := s.engine.Start(c.Request().Context(), address)
	if errors.Is(err, survey.ErrActiveExists) {
		return c.JSON(http.StatusConflict, map[string]any{"ok": false, "error": "an active application already exists"})
	}
	if err != nil {
		s.logger.Error("manual start", zap.String("address", address), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]any{"ok": false})
	}

	return c.JSON(http.StatusCreated, map[string]any{"ok": true})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
}
