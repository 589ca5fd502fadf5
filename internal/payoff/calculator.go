package payoff

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rzzdr/payoff-pipeline/pkg/models"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/errors"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

// Calculation kinds reported to the metrics recorder
const (
	KindChart    = "chart"
	KindSeries   = "series"
	KindGainLoss = "gain_loss"
	KindSummary  = "summary"
	KindBatch    = "batch"
)

// MetricsRecorder receives one observation per completed calculation
type MetricsRecorder interface {
	RecordCalculation(kind string, legs, points int, latency time.Duration)
}

// CalculatorConfig contains configuration for the payoff calculator
type CalculatorConfig struct {
	WorkerCount int // goroutines used by ChartBatch
	BatchLimit  int // maximum positions accepted by ChartBatch
}

// Calculator runs payoff calculations on behalf of the transports and records
// metrics for them. It holds no per-request state and is safe for concurrent use.
type Calculator struct {
	config  CalculatorConfig
	metrics MetricsRecorder
	log     *logger.Logger
}

// NewCalculator creates a new payoff calculator. recorder may be nil.
func NewCalculator(config CalculatorConfig, recorder MetricsRecorder) *Calculator {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 4
	}

	if config.BatchLimit <= 0 {
		config.BatchLimit = 100
	}

	if recorder == nil {
		recorder = noopRecorder{}
	}

	return &Calculator{
		config:  config,
		metrics: recorder,
		log:     logger.GetLogger("payoff.calculator"),
	}
}

// Config returns the effective configuration after defaults
func (c *Calculator) Config() CalculatorConfig {
	return c.config
}

// Chart samples the payoff curve of position
func (c *Calculator) Chart(ctx context.Context, position *models.Position) ([]models.ChartPoint, error) {
	if err := checkRequest(ctx, position); err != nil {
		return nil, err
	}

	start := time.Now()
	points := BuildChartPoints(position)
	c.metrics.RecordCalculation(KindChart, position.LegCount(), len(points), time.Since(start))

	return points, nil
}

// Series samples the payoff curve of position in labels/data form
func (c *Calculator) Series(ctx context.Context, position *models.Position) (models.ReturnData, error) {
	if err := checkRequest(ctx, position); err != nil {
		return models.ReturnData{}, err
	}

	start := time.Now()
	series := BuildSeries(position)
	c.metrics.RecordCalculation(KindSeries, position.LegCount(), len(series.Labels), time.Since(start))

	return series, nil
}

// GainLoss values position at a single expected price
func (c *Calculator) GainLoss(ctx context.Context, position *models.Position, expectedPrice float64) (float64, error) {
	if err := checkRequest(ctx, position); err != nil {
		return 0, err
	}

	start := time.Now()
	gainLoss := CalculateExpectedGainLoss(position, expectedPrice)
	c.metrics.RecordCalculation(KindGainLoss, position.LegCount(), 1, time.Since(start))

	return gainLoss, nil
}

// Summary samples the payoff curve of position and summarizes it
func (c *Calculator) Summary(ctx context.Context, position *models.Position) (*models.ChartReport, error) {
	if err := checkRequest(ctx, position); err != nil {
		return nil, err
	}

	start := time.Now()
	points := BuildChartPoints(position)
	report := &models.ChartReport{
		Points:  points,
		Summary: Summarize(points, position.Price),
	}
	c.metrics.RecordCalculation(KindSummary, position.LegCount(), len(points), time.Since(start))

	return report, nil
}

// ChartBatch charts every position concurrently. Result i belongs to position i.
// A nil position or a cancelled context fails the whole batch.
func (c *Calculator) ChartBatch(ctx context.Context, positions []*models.Position) ([][]models.ChartPoint, error) {
	if len(positions) == 0 {
		return nil, errors.InvalidArgument("at least one position is required")
	}

	if len(positions) > c.config.BatchLimit {
		return nil, errors.InvalidArgumentf("batch of %d positions exceeds the limit of %d", len(positions), c.config.BatchLimit)
	}

	for i, position := range positions {
		if position == nil {
			return nil, errors.InvalidArgumentf("position %d is null", i)
		}
	}

	start := time.Now()
	results := make([][]models.ChartPoint, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.WorkerCount)

	for i, position := range positions {
		i, position := i, position
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = BuildChartPoints(position)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.log.Warnf("Batch of %d positions aborted: %v", len(positions), err)
		return nil, errors.Wrap(err, "batch calculation aborted")
	}

	legs, points := 0, 0
	for i, position := range positions {
		legs += position.LegCount()
		points += len(results[i])
	}
	c.metrics.RecordCalculation(KindBatch, legs, points, time.Since(start))
	c.log.Debugf("Charted batch of %d positions in %v", len(positions), time.Since(start))

	return results, nil
}

func checkRequest(ctx context.Context, position *models.Position) error {
	if position == nil {
		return errors.InvalidArgument("position is required")
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "calculation cancelled")
	}
	return nil
}

type noopRecorder struct{}

func (noopRecorder) RecordCalculation(string, int, int, time.Duration) {}
