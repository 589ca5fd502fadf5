package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rzzdr/payoff-pipeline/pkg/metrics"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

const (
	// RequestIDHeader carries the request id in both directions
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
)

// CORSConfig lists what cross-origin callers may do. An empty list or "*" allows everything.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// RequestIDMiddleware reuses the caller's X-Request-ID or generates one
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}

// LoggingMiddleware logs request information
func LoggingMiddleware() gin.HandlerFunc {
	log := logger.GetLogger("api.middleware")

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)

		log.With(requestIDKey, c.GetString(requestIDKey)).
			Infof("%s %s [%d] %v", method, path, c.Writer.Status(), latency)
	}
}

// MetricsMiddleware captures API metrics, labelled by route template so that
// unknown paths cannot grow the label set
func MetricsMiddleware(recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		recorder.RecordAPIRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing
func CORSMiddleware(config CORSConfig) gin.HandlerFunc {
	methods := joinOr(config.AllowedMethods, "GET, POST, OPTIONS")
	headers := joinOr(config.AllowedHeaders, "Content-Type, "+RequestIDHeader)

	anyOrigin := len(config.AllowedOrigins) == 0
	allowed := make(map[string]bool, len(config.AllowedOrigins))
	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			anyOrigin = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		switch {
		case anyOrigin:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// ErrorMiddleware catches panics and returns an error response
func ErrorMiddleware() gin.HandlerFunc {
	log := logger.GetLogger("api.error")

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorf("API panic recovered: %v", err)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": fmt.Sprintf("Internal server error: %v", err),
				})
			}
		}()

		c.Next()
	}
}

// BodyLimitMiddleware caps the number of bytes read from a request body
func BodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}
