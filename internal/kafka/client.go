package kafka

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

// Client configuration options
type Config struct {
	Brokers        []string
	GroupID        string
	StartOffset    string // "earliest" or "latest", for groups without a committed offset
	MinBytes       int
	MaxBytes       int
	MaxWait        time.Duration
	SessionTimeout time.Duration
	CommitInterval time.Duration // 0 commits synchronously after each handled message
	RetryBackoff   time.Duration // wait before re-handling a message whose handler failed
	RequiredAcks   string        // "none", "one" or "all"
	BatchSize      int
	BatchTimeout   time.Duration
	WriteTimeout   time.Duration
	MaxAttempts    int
}

// Message represents a Kafka message
type Message struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Headers   []MessageHeader
}

// MessageHeader represents a Kafka message header
type MessageHeader struct {
	Key   string
	Value []byte
}

// Client builds readers and writers that share one broker configuration
type Client struct {
	config *Config
	log    *logger.Logger
}

// NewClient creates a new Kafka client. A nil config uses DefaultConfig.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}

	if _, err := parseRequiredAcks(config.RequiredAcks); err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		log:    logger.GetLogger("kafka.client"),
	}, nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Brokers:        []string{"localhost:9092"},
		GroupID:        "payoff-processor",
		StartOffset:    "latest",
		MinBytes:       1,
		MaxBytes:       10_000_000,
		MaxWait:        500 * time.Millisecond,
		SessionTimeout: 30 * time.Second,
		RetryBackoff:   time.Second,
		RequiredAcks:   "all",
		BatchSize:      100,
		BatchTimeout:   10 * time.Millisecond,
		WriteTimeout:   10 * time.Second,
		MaxAttempts:    3,
	}
}

// NewConsumer creates a consumer group member reading topic
func (c *Client) NewConsumer(topic string) (*Consumer, error) {
	if topic == "" {
		return nil, fmt.Errorf("kafka: consumer topic is required")
	}

	startOffset := kafka.LastOffset
	if strings.EqualFold(c.config.StartOffset, "earliest") {
		startOffset = kafka.FirstOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        c.config.Brokers,
		GroupID:        c.config.GroupID,
		Topic:          topic,
		MinBytes:       c.config.MinBytes,
		MaxBytes:       c.config.MaxBytes,
		MaxWait:        c.config.MaxWait,
		SessionTimeout: c.config.SessionTimeout,
		CommitInterval: c.config.CommitInterval,
		StartOffset:    startOffset,
	})

	c.log.Infof("Created consumer for topic %s in group %s", topic, c.config.GroupID)
	return newConsumer(reader, topic, c.config.RetryBackoff, c.log), nil
}

// NewProducer creates a producer writing to topic
func (c *Client) NewProducer(topic string) (*Producer, error) {
	if topic == "" {
		return nil, fmt.Errorf("kafka: producer topic is required")
	}

	acks, err := parseRequiredAcks(c.config.RequiredAcks)
	if err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(c.config.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            c.config.MaxAttempts,
		BatchSize:              c.config.BatchSize,
		BatchTimeout:           c.config.BatchTimeout,
		WriteTimeout:           c.config.WriteTimeout,
		RequiredAcks:           acks,
		AllowAutoTopicCreation: true,
	}

	c.log.Infof("Created producer for topic %s", topic)
	return newProducer(writer, topic, c.log), nil
}

// EnsureTopics creates any of topics that do not exist yet on the cluster controller
func (c *Client) EnsureTopics(ctx context.Context, partitions, replicationFactor int, topics ...string) error {
	conn, err := kafka.DialContext(ctx, "tcp", c.config.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to find controller: %w", err)
	}

	controllerConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to dial controller: %w", err)
	}
	defer controllerConn.Close()

	configs := make([]kafka.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     partitions,
			ReplicationFactor: replicationFactor,
		})
	}

	if err := controllerConn.CreateTopics(configs...); err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}
	return nil
}

func parseRequiredAcks(acks string) (kafka.RequiredAcks, error) {
	switch strings.ToLower(acks) {
	case "", "all", "-1":
		return kafka.RequireAll, nil
	case "one", "1":
		return kafka.RequireOne, nil
	case "none", "0":
		return kafka.RequireNone, nil
	default:
		return 0, fmt.Errorf("kafka: unknown required acks %q", acks)
	}
}

func fromKafkaMessage(m kafka.Message) *Message {
	msg := &Message{
		Key:       m.Key,
		Value:     m.Value,
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Timestamp: m.Time,
	}

	if len(m.Headers) > 0 {
		msg.Headers = make([]MessageHeader, len(m.Headers))
		for i, h := range m.Headers {
			msg.Headers[i] = MessageHeader{Key: h.Key, Value: h.Value}
		}
	}

	return msg
}
