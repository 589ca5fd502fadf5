package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

// MessageHandler processes one consumed message. Returning an error makes the
// consumer retry the same message.
type MessageHandler func(ctx context.Context, msg *Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer wraps a Kafka reader with an at-least-once handling loop
type Consumer struct {
	reader       messageReader
	topic        string
	retryBackoff time.Duration
	log          *logger.Logger
}

func newConsumer(reader messageReader, topic string, retryBackoff time.Duration, log *logger.Logger) *Consumer {
	if retryBackoff <= 0 {
		retryBackoff = time.Second
	}
	return &Consumer{
		reader:       reader,
		topic:        topic,
		retryBackoff: retryBackoff,
		log:          log,
	}
}

// Run fetches messages until ctx is cancelled, committing each one after handler
// succeeds. It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context, handler MessageHandler) error {
	c.log.Infof("Consuming topic %s", c.topic)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to fetch message from %s: %w", c.topic, err)
		}

		if err := c.handleWithRetry(ctx, handler, fromKafkaMessage(m)); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to commit offset %d on %s: %w", m.Offset, c.topic, err)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, handler MessageHandler, msg *Message) error {
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}

		c.log.Warnf("Handler failed for %s[%d]@%d (attempt %d): %v", msg.Topic, msg.Partition, msg.Offset, attempt, err)

		timer := time.NewTimer(c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Close closes the underlying reader and leaves the consumer group
func (c *Consumer) Close() error {
	return c.reader.Close()
}
