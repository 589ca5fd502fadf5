package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	r := s.engine

	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	if s.metricsRecorder != nil {
		r.Use(MetricsMiddleware(s.metricsRecorder))
	}
	r.Use(CORSMiddleware(s.config.CORS))
	r.Use(ErrorMiddleware())
	r.Use(BodyLimitMiddleware(s.config.MaxBodyBytes))

	r.GET("/health", s.handlers.HealthCheckHandler)

	if s.metricsRecorder != nil {
		r.GET("/metrics", gin.WrapH(s.metricsRecorder.Handler()))
	}

	// The chart endpoint has always been served from the root as well
	r.GET("/", s.handlers.ChartHandler)
	r.POST("/", s.handlers.ChartHandler)

	v1 := r.Group("/api/v1")
	{
		p := v1.Group("/payoff")
		p.POST("/chart", s.handlers.ChartHandler)
		p.POST("/gain-loss", s.handlers.GainLossHandler)
		p.POST("/summary", s.handlers.SummaryHandler)
		p.POST("/batch", s.handlers.BatchHandler)
	}

	if s.hub != nil {
		r.GET("/ws", gin.WrapF(s.hub.HandleWebSocket))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
		})
	})
}
