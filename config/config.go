package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config for the whole application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	API       APIConfig       `mapstructure:"api"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Processor ProcessorConfig `mapstructure:"processor"`
}

// General application configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// Logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Configuration for the API server
type APIConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

// CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// Configuration for the WebSocket endpoint
type WebSocketConfig struct {
	Enabled        bool  `mapstructure:"enabled"`
	MaxMessageSize int64 `mapstructure:"max_message_size"`
}

// Configuration for Kafka
type KafkaConfig struct {
	Enabled  bool                `mapstructure:"enabled"`
	Brokers  []string            `mapstructure:"brokers"`
	Consumer KafkaConsumerConfig `mapstructure:"consumer"`
	Producer KafkaProducerConfig `mapstructure:"producer"`
	Topics   KafkaTopicsConfig   `mapstructure:"topics"`
}

// Kafka consumer configuration
type KafkaConsumerConfig struct {
	GroupID        string        `mapstructure:"group_id"`
	StartOffset    string        `mapstructure:"start_offset"`
	MaxWait        time.Duration `mapstructure:"max_wait"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
	CommitInterval time.Duration `mapstructure:"commit_interval"`
	MinBytes       int           `mapstructure:"min_bytes"`
	MaxBytes       int           `mapstructure:"max_bytes"`
}

// Kafka producer configuration
type KafkaProducerConfig struct {
	RequiredAcks string        `mapstructure:"required_acks"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

// Kafka topics configuration
type KafkaTopicsConfig struct {
	Positions string `mapstructure:"positions"`
	Charts    string `mapstructure:"charts"`
}

// Configuration for metrics
type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// Configuration for Prometheus metrics
type PrometheusConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Configuration for payoff calculations
type ProcessorConfig struct {
	Workers    int `mapstructure:"workers"`
	BatchLimit int `mapstructure:"batch_limit"`
}

// Load reads the configuration. Values come, in increasing precedence, from the
// defaults, the YAML file at path (or ./config/config.yaml when path is empty and
// the file exists), a .env file and PAYOFF_* environment variables.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("PAYOFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "payoff-pipeline")
	v.SetDefault("app.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 3001)
	v.SetDefault("api.read_timeout", "10s")
	v.SetDefault("api.write_timeout", "10s")
	v.SetDefault("api.shutdown_timeout", "15s")
	v.SetDefault("api.max_body_bytes", 1<<20)
	v.SetDefault("api.cors.allowed_origins", []string{"*"})
	v.SetDefault("api.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("api.cors.allowed_headers", []string{"Content-Type", "X-Request-ID"})

	// WebSocket defaults
	v.SetDefault("websocket.enabled", true)
	v.SetDefault("websocket.max_message_size", 64*1024)

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.consumer.group_id", "payoff-processor")
	v.SetDefault("kafka.consumer.start_offset", "latest")
	v.SetDefault("kafka.consumer.max_wait", "500ms")
	v.SetDefault("kafka.consumer.session_timeout", "30s")
	v.SetDefault("kafka.consumer.commit_interval", "0s")
	v.SetDefault("kafka.consumer.min_bytes", 1)
	v.SetDefault("kafka.consumer.max_bytes", 10_000_000)
	v.SetDefault("kafka.producer.required_acks", "all")
	v.SetDefault("kafka.producer.batch_size", 100)
	v.SetDefault("kafka.producer.batch_timeout", "10ms")
	v.SetDefault("kafka.producer.write_timeout", "10s")
	v.SetDefault("kafka.producer.max_attempts", 3)
	v.SetDefault("kafka.topics.positions", "payoff.positions")
	v.SetDefault("kafka.topics.charts", "payoff.charts")

	// Metrics defaults
	v.SetDefault("metrics.prometheus.enabled", false)
	v.SetDefault("metrics.prometheus.port", 9090)

	// Processor defaults
	v.SetDefault("processor.workers", 8)
	v.SetDefault("processor.batch_limit", 100)
}

// GetConfigPath returns the config file named by PAYOFF_CONFIG_PATH, or "" to use the search path
func GetConfigPath() string {
	return os.Getenv("PAYOFF_CONFIG_PATH")
}
