package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	now func() time.Time
}

var healthHandler *HealthHandler

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: time.Now}
}

func SetupHealthHandler() {
	healthHandler = NewHealthHandler()
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   h.now().Format(time.RFC3339),
	})
}
