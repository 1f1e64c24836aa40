package handler

import (
	"net/http"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "emergencyreport/internal/infrastructure/websocket"
	"emergencyreport/pkg/errors"
	"emergencyreport/pkg/logger"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewWebSocketHandler(wsManager *ws.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
	}
}

// HandleWebSocket subscribes the caller to newly stored reports.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	if !h.wsManager.Join(client) {
		logger.Warn("Live feed is shutting down, rejecting viewer %s", client.ID)
		conn.Close()
		return nil
	}

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
