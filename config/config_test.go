package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "payoff-pipeline", cfg.App.Name)
	assert.Equal(t, 3001, cfg.API.Port)
	assert.Equal(t, 10*time.Second, cfg.API.ReadTimeout)
	assert.Equal(t, int64(1<<20), cfg.API.MaxBodyBytes)
	assert.Equal(t, []string{"*"}, cfg.API.CORS.AllowedOrigins)
	assert.True(t, cfg.WebSocket.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "payoff.positions", cfg.Kafka.Topics.Positions)
	assert.Equal(t, "payoff.charts", cfg.Kafka.Topics.Charts)
	assert.Equal(t, 500*time.Millisecond, cfg.Kafka.Consumer.MaxWait)
	assert.Equal(t, 8, cfg.Processor.Workers)
	assert.Equal(t, 100, cfg.Processor.BatchLimit)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PAYOFF_API_PORT", "8080")
	t.Setenv("PAYOFF_KAFKA_ENABLED", "true")
	t.Setenv("PAYOFF_PROCESSOR_BATCH_LIMIT", "5")
	t.Setenv("PAYOFF_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, 5, cfg.Processor.BatchLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payoff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  environment: production
api:
  port: 9000
  write_timeout: 3s
kafka:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
  topics:
    charts: custom.charts
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, 3*time.Second, cfg.API.WriteTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "custom.charts", cfg.Kafka.Topics.Charts)
	assert.Equal(t, "payoff.positions", cfg.Kafka.Topics.Positions, "unset keys keep their defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("PAYOFF_CONFIG_PATH", "/etc/payoff/config.yaml")
	assert.Equal(t, "/etc/payoff/config.yaml", GetConfigPath())
}
