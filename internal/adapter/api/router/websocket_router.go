package router

import (
	"github.com/labstack/echo/v4"

	"emergencyreport/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up the live report feed
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws/reports", wsHandler.HandleWebSocket)
}
