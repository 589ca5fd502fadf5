package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/rzzdr/payoff-pipeline/config"
	"github.com/rzzdr/payoff-pipeline/internal/adapters"
	"github.com/rzzdr/payoff-pipeline/internal/payoff"
	"github.com/rzzdr/payoff-pipeline/internal/websocket"
	"github.com/rzzdr/payoff-pipeline/pkg/api"
	"github.com/rzzdr/payoff-pipeline/pkg/metrics"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

var (
	configFile = flag.String("config", config.GetConfigPath(), "Path to configuration file")
	version    = "dev"
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.GetLogger("api.main").Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.App.Environment,
		FilePath:    cfg.Log.FilePath,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
	})
	log := logger.GetLogger("api.main")
	defer log.Sync()

	log.Infof("Starting %s API service (%s)", cfg.App.Name, cfg.App.Environment)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()
	metricsAdapter := adapters.NewMetricsAdapter(recorder)

	calculator := payoff.NewCalculator(payoff.CalculatorConfig{
		WorkerCount: cfg.Processor.Workers,
		BatchLimit:  cfg.Processor.BatchLimit,
	}, metricsAdapter)

	var hub *websocket.Hub
	if cfg.WebSocket.Enabled {
		hub = websocket.NewHub(calculator, websocket.HubConfig{
			MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		}, metricsAdapter)
	}

	apiServer := api.NewServer(
		api.Config{
			Host:         cfg.API.Host,
			Port:         cfg.API.Port,
			ReadTimeout:  cfg.API.ReadTimeout,
			WriteTimeout: cfg.API.WriteTimeout,
			MaxBodyBytes: cfg.API.MaxBodyBytes,
			CORS: api.CORSConfig{
				AllowedOrigins: cfg.API.CORS.AllowedOrigins,
				AllowedMethods: cfg.API.CORS.AllowedMethods,
				AllowedHeaders: cfg.API.CORS.AllowedHeaders,
			},
			Version: version,
		},
		calculator,
		hub,
		recorder,
	)

	var promServer *metrics.PrometheusServer
	if cfg.Metrics.Prometheus.Enabled {
		promServer = metrics.NewPrometheusServer(cfg.Metrics.Prometheus.Port, recorder)
	}

	g, gctx := errgroup.WithContext(ctx)

	if hub != nil {
		g.Go(func() error {
			hub.Run(gctx)
			return nil
		})
	}

	g.Go(apiServer.Start)

	if promServer != nil {
		g.Go(promServer.Start)
	}

	// Shuts the servers down once a signal arrives or one of them fails
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Initiating shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.API.ShutdownTimeout))
		defer cancel()

		if err := apiServer.Stop(shutdownCtx); err != nil {
			log.Errorf("API server shutdown error: %v", err)
		}

		if promServer != nil {
			if err := promServer.Stop(shutdownCtx); err != nil {
				log.Errorf("Prometheus server shutdown error: %v", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("API service stopped with error: %v", err)
	}

	log.Info("Shutdown complete")
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
