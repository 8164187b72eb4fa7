package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/smart-energy/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(newEngine(cfg, handler), cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func newEngine(cfg *config.Config, handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	logger := handler.logger

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		metricsMiddleware(),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1", rateLimitMiddleware(cfg.HTTP.RateLimit, logger))
	{
		api.GET("/tariffs", handler.Tariffs)
		api.GET("/tariffs/current", handler.CurrentTariff)
		api.GET("/tariffs/classify", handler.ClassifyHour)
		api.GET("/tariffs/cost", handler.Cost)

		api.GET("/usage/current", handler.CurrentUsage)
		api.GET("/usage/today", handler.TodayUsage)
		api.GET("/usage/daily", handler.DailyUsage)
		api.GET("/usage/weekly", handler.WeeklyUsage)
		api.GET("/usage/devices", handler.Devices)

		api.GET("/bills", handler.Bills)
		api.GET("/bills/current", handler.CurrentBill)
		api.POST("/bills/quote", handler.QuoteBill)
		api.POST("/bills/:year/:month/statement", handler.ExportStatement)
		api.GET("/bills/:year/:month/statement", handler.Statement)

		api.GET("/insights", handler.Insights)

		api.GET("/notifications", handler.Notifications)
		api.DELETE("/notifications", handler.ClearNotifications)
		api.GET("/notifications/reminders", handler.Reminders)
		api.POST("/notifications/read-all", handler.MarkAllRead)
		api.POST("/notifications/usage-alert", handler.UsageAlert)
		api.POST("/notifications/bill-prediction", handler.BillPrediction)
		api.POST("/notifications/:id/read", handler.MarkRead)
		api.DELETE("/notifications/:id", handler.RemoveNotification)
	}

	return router
}
