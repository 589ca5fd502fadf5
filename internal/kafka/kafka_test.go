package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

// fakeReader serves queued messages, then blocks until the context is done
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	fetchErr  error
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if r.fetchErr != nil {
		err := r.fetchErr
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type fakeWriter struct {
	written []kafka.Message
	err     error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestNewClient(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.Error(t, err, "brokers are required")

	_, err = NewClient(&Config{Brokers: []string{"localhost:9092"}, RequiredAcks: "some"})
	assert.Error(t, err)

	client, err := NewClient(nil)
	require.NoError(t, err)

	_, err = client.NewConsumer("")
	assert.Error(t, err)
	_, err = client.NewProducer("")
	assert.Error(t, err)
}

func TestParseRequiredAcks(t *testing.T) {
	tests := map[string]kafka.RequiredAcks{
		"":     kafka.RequireAll,
		"all":  kafka.RequireAll,
		"One":  kafka.RequireOne,
		"none": kafka.RequireNone,
		"0":    kafka.RequireNone,
	}

	for input, want := range tests {
		got, err := parseRequiredAcks(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestConsumer_RunCommitsHandledMessages(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Topic: "positions", Offset: 1, Key: []byte("a"), Value: []byte(`{}`)},
		{Topic: "positions", Offset: 2, Key: []byte("b"), Value: []byte(`{}`),
			Headers: []kafka.Header{{Key: "trace", Value: []byte("t1")}}},
	}}
	consumer := newConsumer(reader, "positions", time.Millisecond, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen []*Message
	err := consumer.Run(ctx, func(_ context.Context, msg *Message) error {
		seen = append(seen, msg)
		if len(seen) == 2 {
			cancel()
		}
		return nil
	})

	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, "a", string(seen[0].Key))
	assert.Equal(t, []MessageHeader{{Key: "trace", Value: []byte("t1")}}, seen[1].Headers)
	assert.Equal(t, []int64{1, 2}, reader.committedOffsets())
}

func TestConsumer_RunRetriesFailedHandler(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{{Topic: "positions", Offset: 7}}}
	consumer := newConsumer(reader, "positions", time.Millisecond, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := 0
	err := consumer.Run(ctx, func(context.Context, *Message) error {
		attempts++
		if attempts < 3 {
			return errors.New("downstream unavailable")
		}
		cancel()
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int64{7}, reader.committedOffsets())
}

func TestConsumer_RunStopsRetryingOnCancel(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{{Topic: "positions", Offset: 3}}}
	consumer := newConsumer(reader, "positions", time.Hour, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())

	err := consumer.Run(ctx, func(context.Context, *Message) error {
		cancel()
		return errors.New("always failing")
	})

	require.NoError(t, err)
	assert.Empty(t, reader.committedOffsets(), "a message that was never handled is not committed")
}

func TestConsumer_RunReturnsFetchError(t *testing.T) {
	reader := &fakeReader{fetchErr: errors.New("group coordinator not available")}
	consumer := newConsumer(reader, "positions", time.Millisecond, logger.NewNop())

	err := consumer.Run(context.Background(), func(context.Context, *Message) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "group coordinator not available")
	require.NoError(t, consumer.Close())
	assert.True(t, reader.closed)
}

func TestProducer_PublishJSON(t *testing.T) {
	writer := &fakeWriter{}
	producer := newProducer(writer, "charts", logger.NewNop())

	err := producer.PublishJSON(context.Background(), "req-1", map[string]int{"points": 5})

	require.NoError(t, err)
	require.Len(t, writer.written, 1)
	msg := writer.written[0]
	assert.Equal(t, "req-1", string(msg.Key))
	assert.JSONEq(t, `{"points": 5}`, string(msg.Value))
	assert.Equal(t, []kafka.Header{{Key: "content-type", Value: []byte("application/json")}}, msg.Headers)
}

func TestProducer_Errors(t *testing.T) {
	producer := newProducer(&fakeWriter{err: errors.New("leader not available")}, "charts", logger.NewNop())

	err := producer.ProduceMessage(context.Background(), nil, []byte("x"), nil)
	assert.ErrorContains(t, err, "leader not available")

	err = producer.PublishJSON(context.Background(), "k", make(chan int))
	var unsupported *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
}
