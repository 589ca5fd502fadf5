package payoff

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rzzdr/payoff-pipeline/pkg/models"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/errors"
)

type mockRecorder struct {
	mock.Mock
	mu sync.Mutex
}

func (m *mockRecorder) RecordCalculation(kind string, legs, points int, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Called(kind, legs, points, latency)
}

func TestNewCalculator_Defaults(t *testing.T) {
	calc := NewCalculator(CalculatorConfig{}, nil)

	assert.Equal(t, CalculatorConfig{WorkerCount: 4, BatchLimit: 100}, calc.Config())
}

func TestCalculator_Chart(t *testing.T) {
	recorder := &mockRecorder{}
	recorder.On("RecordCalculation", KindChart, 1, 5, mock.AnythingOfType("time.Duration")).Return().Once()

	calc := NewCalculator(CalculatorConfig{}, recorder)
	p := position(10, 0, []models.OptionLeg{call(10, 1, 1)}, nil)

	points, err := calc.Chart(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, BuildChartPoints(p), points)
	recorder.AssertExpectations(t)
}

func TestCalculator_GainLoss(t *testing.T) {
	recorder := &mockRecorder{}
	recorder.On("RecordCalculation", KindGainLoss, 0, 1, mock.Anything).Return()

	calc := NewCalculator(CalculatorConfig{}, recorder)

	got, err := calc.GainLoss(context.Background(), position(15, 500, nil, nil), 16)

	require.NoError(t, err)
	assert.InDelta(t, 500.0, got, 1e-9)
	recorder.AssertExpectations(t)
}

func TestCalculator_SeriesAndSummary(t *testing.T) {
	calc := NewCalculator(CalculatorConfig{}, nil)
	p := position(10, 0, []models.OptionLeg{call(10, 1, 1)}, nil)

	series, err := calc.Series(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, BuildSeries(p), series)

	report, err := calc.Summary(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, BuildChartPoints(p), report.Points)
	assert.Equal(t, []float64{11}, report.Summary.Breakevens)
}

func TestCalculator_RejectsNilPosition(t *testing.T) {
	calc := NewCalculator(CalculatorConfig{}, nil)

	_, err := calc.Chart(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInvalidArgument, errors.TypeOf(err))
}

func TestCalculator_CancelledContext(t *testing.T) {
	calc := NewCalculator(CalculatorConfig{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := calc.GainLoss(ctx, position(15, 1, nil, nil), 16)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, errors.ErrorTypeTimeout, errors.TypeOf(err))
}

func TestCalculator_ChartBatch(t *testing.T) {
	recorder := &mockRecorder{}
	recorder.On("RecordCalculation", KindBatch, 3, mock.Anything, mock.Anything).Return().Once()

	calc := NewCalculator(CalculatorConfig{WorkerCount: 2}, recorder)
	positions := []*models.Position{
		position(15, 500, nil, nil),
		position(10, 0, []models.OptionLeg{call(10, 1, 1)}, nil),
		position(15, 100, []models.OptionLeg{put(14.5, 1, 0.25)}, []models.OptionLeg{call(16, 1, 0.15)}),
		position(20, 10, nil, nil),
	}

	results, err := calc.ChartBatch(context.Background(), positions)

	require.NoError(t, err)
	require.Len(t, results, len(positions))
	for i, p := range positions {
		assert.Equal(t, BuildChartPoints(p), results[i], "result %d", i)
	}
	recorder.AssertExpectations(t)
}

func TestCalculator_ChartBatch_Invalid(t *testing.T) {
	calc := NewCalculator(CalculatorConfig{BatchLimit: 2}, nil)
	p := position(15, 1, nil, nil)

	tests := []struct {
		name      string
		positions []*models.Position
		errMsg    string
	}{
		{name: "empty", positions: nil, errMsg: "at least one position"},
		{name: "over the limit", positions: []*models.Position{p, p, p}, errMsg: "exceeds the limit of 2"},
		{name: "null element", positions: []*models.Position{p, nil}, errMsg: "position 1 is null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.ChartBatch(context.Background(), tt.positions)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, errors.ErrorTypeInvalidArgument, errors.TypeOf(err))
		})
	}
}

func TestCalculator_ChartBatch_Cancelled(t *testing.T) {
	calc := NewCalculator(CalculatorConfig{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := calc.ChartBatch(ctx, []*models.Position{position(15, 1, nil, nil)})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
