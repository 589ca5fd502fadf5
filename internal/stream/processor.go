// Package stream charts positions arriving on a message stream and publishes
// the results to another stream.
package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rzzdr/payoff-pipeline/internal/kafka"
	"github.com/rzzdr/payoff-pipeline/internal/payoff"
	"github.com/rzzdr/payoff-pipeline/pkg/models"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/circuit"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/errors"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

// Message outcomes reported to the metrics recorder
const (
	OutcomeCharted       = "charted"
	OutcomeInvalid       = "invalid"
	OutcomePublishFailed = "publish_failed"
)

// Source delivers messages to a handler until its context is cancelled
type Source interface {
	Run(ctx context.Context, handler kafka.MessageHandler) error
}

// Publisher writes a JSON-encoded value under a key
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v interface{}) error
}

// MetricsRecorder counts handled messages by outcome
type MetricsRecorder interface {
	RecordMessage(outcome string)
}

// Processor turns ChartRequests into ChartResults
type Processor struct {
	source     Source
	publisher  Publisher
	calculator *payoff.Calculator
	breaker    *circuit.CircuitBreaker
	metrics    MetricsRecorder
	now        func() time.Time
	log        *logger.Logger
}

// NewProcessor creates a new stream processor. metrics may be nil.
func NewProcessor(source Source, publisher Publisher, calculator *payoff.Calculator, breaker *circuit.CircuitBreaker, metrics MetricsRecorder) *Processor {
	if breaker == nil {
		breaker = circuit.NewCircuitBreaker("chart-publisher", circuit.DefaultConfig())
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}

	return &Processor{
		source:     source,
		publisher:  publisher,
		calculator: calculator,
		breaker:    breaker,
		metrics:    metrics,
		now:        time.Now,
		log:        logger.GetLogger("stream.processor"),
	}
}

// Run consumes the source until ctx is cancelled
func (p *Processor) Run(ctx context.Context) error {
	p.log.Info("Starting chart stream processor")
	defer p.log.Info("Chart stream processor stopped")

	return p.source.Run(ctx, p.HandleMessage)
}

// HandleMessage charts one request and publishes the result keyed by the request
// ID, or by the message key when the request carries none. Undecodable requests
// are answered with an error result so that they are committed and not retried.
// Only a failed publish is returned as an error.
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.Message) error {
	result, outcome := p.chart(ctx, msg)
	if err := ctx.Err(); err != nil {
		return err
	}

	key := result.ID
	if key == "" {
		key = string(msg.Key)
	}

	err := p.breaker.Do(ctx, func(ctx context.Context) error {
		return p.publisher.PublishJSON(ctx, key, result)
	})
	if err != nil {
		p.metrics.RecordMessage(OutcomePublishFailed)
		p.log.Errorf("Failed to publish chart result for %s: %v", key, err)
		return errors.WithType(err, errors.ErrorTypeUnavailable)
	}

	p.metrics.RecordMessage(outcome)
	return nil
}

func (p *Processor) chart(ctx context.Context, msg *kafka.Message) (*models.ChartResult, string) {
	var request models.ChartRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		p.log.Warnf("Rejected message %s[%d]@%d: %v", msg.Topic, msg.Partition, msg.Offset, err)
		return p.failure(request.ID, "invalid chart request: "+err.Error()), OutcomeInvalid
	}

	if request.Position == nil {
		return p.failure(request.ID, "position is required"), OutcomeInvalid
	}

	report, err := p.calculator.Summary(ctx, request.Position)
	if err != nil {
		return p.failure(request.ID, err.Error()), OutcomeInvalid
	}

	return &models.ChartResult{
		ID:         request.ID,
		Points:     report.Points,
		Summary:    &report.Summary,
		ComputedAt: p.now().UTC(),
	}, OutcomeCharted
}

func (p *Processor) failure(id, reason string) *models.ChartResult {
	return &models.ChartResult{
		ID:         id,
		Error:      reason,
		ComputedAt: p.now().UTC(),
	}
}

type noopRecorder struct{}

func (noopRecorder) RecordMessage(string) {}
