package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer is a wrapper around the Kafka writer
type Producer struct {
	writer messageWriter
	topic  string
	log    *logger.Logger
}

func newProducer(writer messageWriter, topic string, log *logger.Logger) *Producer {
	return &Producer{
		writer: writer,
		topic:  topic,
		log:    log,
	}
}

// ProduceMessage writes a message to the topic and waits for the configured acks
func (p *Producer) ProduceMessage(ctx context.Context, key []byte, value []byte, headers []MessageHeader) error {
	var kafkaHeaders []kafka.Header
	if len(headers) > 0 {
		kafkaHeaders = make([]kafka.Header, len(headers))
		for i, h := range headers {
			kafkaHeaders[i] = kafka.Header{
				Key:   h.Key,
				Value: h.Value,
			}
		}
	}

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:     key,
		Value:   value,
		Headers: kafkaHeaders,
	})
	if err != nil {
		p.log.Errorf("Failed to produce message to %s: %v", p.topic, err)
		return fmt.Errorf("failed to produce message: %w", err)
	}

	return nil
}

// PublishJSON encodes v as JSON and writes it under key
func (p *Producer) PublishJSON(ctx context.Context, key string, v interface{}) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	return p.ProduceMessage(ctx, []byte(key), value, []MessageHeader{
		{Key: "content-type", Value: []byte("application/json")},
	})
}

// Close flushes pending messages and closes the writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
