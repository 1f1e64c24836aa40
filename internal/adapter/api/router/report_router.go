package router

import (
	"github.com/labstack/echo/v4"

	"emergencyreport/internal/adapter/api/handler"
	"emergencyreport/internal/adapter/api/middleware"
)

func SetupReportRouter(e *echo.Echo, submitLimiter *middleware.RateLimiter) {
	reportHandler := handler.GetReportHandler()

	reports := e.Group("/api")

	var submitMiddleware []echo.MiddlewareFunc
	if submitLimiter != nil {
		submitMiddleware = append(submitMiddleware, submitLimiter.RateLimitMiddleware())
	}
	submitMiddleware = append(submitMiddleware, reportHandler.UploadLimit())
	reports.POST("/submit-report", reportHandler.SubmitReport, submitMiddleware...)

	reports.GET("/reports", reportHandler.ListReports)
	reports.GET("/reports/stats", reportHandler.GetStats)
	reports.GET("/reports/export", reportHandler.ExportReports)
}
