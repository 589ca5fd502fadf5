package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rzzdr/payoff-pipeline/config"
	"github.com/rzzdr/payoff-pipeline/internal/adapters"
	"github.com/rzzdr/payoff-pipeline/internal/kafka"
	"github.com/rzzdr/payoff-pipeline/internal/payoff"
	"github.com/rzzdr/payoff-pipeline/internal/stream"
	"github.com/rzzdr/payoff-pipeline/pkg/metrics"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/circuit"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

var (
	configFile   = flag.String("config", config.GetConfigPath(), "Path to configuration file")
	createTopics = flag.Bool("create-topics", false, "Create the request and result topics before consuming")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.GetLogger("processor.main").Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.App.Environment,
		FilePath:    cfg.Log.FilePath,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
	})
	log := logger.GetLogger("processor.main")
	defer log.Sync()

	if !cfg.Kafka.Enabled {
		log.Fatalf("Kafka is disabled; set kafka.enabled (PAYOFF_KAFKA_ENABLED=true) to run the processor")
	}

	log.Infof("Starting %s chart processor on %v", cfg.App.Name, cfg.Kafka.Brokers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()
	metricsAdapter := adapters.NewMetricsAdapter(recorder)

	kafkaClient, err := kafka.NewClient(&kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.Consumer.GroupID,
		StartOffset:    cfg.Kafka.Consumer.StartOffset,
		MinBytes:       cfg.Kafka.Consumer.MinBytes,
		MaxBytes:       cfg.Kafka.Consumer.MaxBytes,
		MaxWait:        cfg.Kafka.Consumer.MaxWait,
		SessionTimeout: cfg.Kafka.Consumer.SessionTimeout,
		CommitInterval: cfg.Kafka.Consumer.CommitInterval,
		RetryBackoff:   time.Second,
		RequiredAcks:   cfg.Kafka.Producer.RequiredAcks,
		BatchSize:      cfg.Kafka.Producer.BatchSize,
		BatchTimeout:   cfg.Kafka.Producer.BatchTimeout,
		WriteTimeout:   cfg.Kafka.Producer.WriteTimeout,
		MaxAttempts:    cfg.Kafka.Producer.MaxAttempts,
	})
	if err != nil {
		log.Fatalf("Failed to create Kafka client: %v", err)
	}

	if *createTopics {
		if err := kafkaClient.EnsureTopics(ctx, 1, 1, cfg.Kafka.Topics.Positions, cfg.Kafka.Topics.Charts); err != nil {
			log.Errorf("Failed to create topics: %v", err)
		}
	}

	consumer, err := kafkaClient.NewConsumer(cfg.Kafka.Topics.Positions)
	if err != nil {
		log.Fatalf("Failed to create consumer: %v", err)
	}
	defer consumer.Close()

	producer, err := kafkaClient.NewProducer(cfg.Kafka.Topics.Charts)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}
	defer producer.Close()

	breaker := circuit.NewCircuitBreaker("chart-publisher", circuit.Config{
		MaxFailures: 5,
		Timeout:     30 * time.Second,
		OnStateChange: func(name string, from, to circuit.State) {
			log.Warnf("Circuit breaker %s changed from %s to %s", name, from, to)
		},
	})

	calculator := payoff.NewCalculator(payoff.CalculatorConfig{
		WorkerCount: cfg.Processor.Workers,
		BatchLimit:  cfg.Processor.BatchLimit,
	}, metricsAdapter)

	processor := stream.NewProcessor(consumer, producer, calculator, breaker, metricsAdapter)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return processor.Run(gctx)
	})

	if cfg.Metrics.Prometheus.Enabled {
		promServer := metrics.NewPrometheusServer(cfg.Metrics.Prometheus.Port, recorder)
		g.Go(promServer.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return promServer.Stop(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("Chart processor stopped with error: %v", err)
	}

	log.Info("Shutdown complete")
}
