package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"emergencyreport/internal/adapter/api/handler"
	"emergencyreport/internal/adapter/api/middleware"
)

type Options struct {
	SubmitLimiter *middleware.RateLimiter
	WSHandler     *handler.WebSocketHandler
	Gatherer      prometheus.Gatherer
	UploadsDir    string
}

func Setup(e *echo.Echo, opts Options) {
	SetupReportRouter(e, opts.SubmitLimiter)
	SetupHealthRouter(e)
	if opts.WSHandler != nil {
		SetupWebSocketRouter(e, opts.WSHandler)
	}
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	if opts.UploadsDir != "" {
		e.Static("/uploads", opts.UploadsDir)
	}
}
