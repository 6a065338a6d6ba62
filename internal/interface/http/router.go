package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matevzk/povzetek/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Healthz)

	api := router.Group("/api/v1")

	// Streaming endpoints bypass the limiter: one generation is a single
	// long-lived request, not burst traffic.
	api.POST("/chat", handler.Chat)
	api.POST("/models/switch", handler.SwitchModel)

	limited := api.Group("")
	limited.Use(rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger))
	{
		limited.POST("/chat/cancel", handler.CancelChat)
		limited.POST("/chat/refine", handler.RefineChat)
		limited.GET("/chat/state", handler.ChatState)
		limited.POST("/analyze", handler.Analyze)
		limited.POST("/analyze/local", handler.AnalyzeLocal)

		limited.GET("/summaries", handler.ListSummaries)
		limited.POST("/summaries", handler.CreateSummary)
		limited.PUT("/summaries/:id", handler.UpdateSummary)
		limited.GET("/summaries/:id/parameters", handler.SummaryParameters)
		limited.PUT("/summaries/:id/parameters", handler.UpdateSummaryParameters)
		limited.POST("/summaries/:id/activate", handler.ActivateSummary)

		limited.POST("/models", handler.ListModels)
		limited.POST("/models/current", handler.CurrentModel)

		limited.GET("/settings/endpoint", handler.EndpointSetting)
		limited.PUT("/settings/endpoint", handler.UpdateEndpointSetting)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
