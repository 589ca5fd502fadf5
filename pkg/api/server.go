package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rzzdr/payoff-pipeline/internal/payoff"
	"github.com/rzzdr/payoff-pipeline/internal/websocket"
	"github.com/rzzdr/payoff-pipeline/pkg/metrics"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

// Config holds the configuration for the API server
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
	CORS         CORSConfig
	Version      string
}

// Server represents the API server
type Server struct {
	config          Config
	engine          *gin.Engine
	httpServer      *http.Server
	handlers        *Handlers
	hub             *websocket.Hub
	metricsRecorder *metrics.Recorder
	log             *logger.Logger
}

// NewServer creates a new API server. hub and metricsRecorder may be nil, which
// disables the /ws and /metrics routes.
func NewServer(config Config, calculator *payoff.Calculator, hub *websocket.Hub, metricsRecorder *metrics.Recorder) *Server {
	// Apply defaults if needed
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 10 * time.Second
	}

	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}

	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}

	if config.Version == "" {
		config.Version = "dev"
	}

	server := &Server{
		config:          config,
		engine:          gin.New(),
		handlers:        NewHandlers(calculator, config.Version),
		hub:             hub,
		metricsRecorder: metricsRecorder,
		log:             logger.GetLogger("api.server"),
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.engine,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return server
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the API server and blocks until it is stopped
func (s *Server) Start() error {
	s.log.Infof("Starting API server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the API server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Stopping API server")
	return s.httpServer.Shutdown(ctx)
}
