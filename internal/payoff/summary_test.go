package payoff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzzdr/payoff-pipeline/pkg/models"
)

func TestSummarize_BoughtCall(t *testing.T) {
	p := position(10, 0, []models.OptionLeg{call(10, 1, 1)}, nil)

	summary := Summarize(BuildChartPoints(p), p.Price)

	assert.InDelta(t, 9.5, summary.MinX, 1e-9)
	assert.InDelta(t, 11.5, summary.MaxX, 1e-9)
	assert.InDelta(t, -100.0, summary.MinGainLoss, 1e-9)
	assert.InDelta(t, 50.0, summary.MaxGainLoss, 1e-9)
	assert.InDelta(t, -110.0, summary.SuggestedMin, 1e-9)
	assert.InDelta(t, 60.0, summary.SuggestedMax, 1e-9)
	require.Len(t, summary.Breakevens, 1)
	assert.InDelta(t, 11.0, summary.Breakevens[0], 1e-9)
}

func TestSummarize_InterpolatesCrossing(t *testing.T) {
	collar := position(15, 100, []models.OptionLeg{put(14.5, 1, 0.25)}, []models.OptionLeg{call(16, 1, 0.15)})

	summary := Summarize(BuildChartPoints(collar), collar.Price)

	require.Len(t, summary.Breakevens, 1)
	assert.InDelta(t, 15.1, summary.Breakevens[0], 1e-9)
	assert.InDelta(t, 0.0, CalculateExpectedGainLoss(collar, summary.Breakevens[0]), 1e-9)
	assert.InDelta(t, -60.0, summary.MinGainLoss, 1e-9)
	assert.InDelta(t, 90.0, summary.MaxGainLoss, 1e-9)
}

func TestSummarize_FlatZeroCurve(t *testing.T) {
	points := []models.ChartPoint{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 5}}

	summary := Summarize(points, 2)

	assert.Equal(t, []float64{1, 2}, summary.Breakevens)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil, 10)

	assert.Equal(t, 0.0, summary.MinX)
	assert.NotNil(t, summary.Breakevens)
	assert.Empty(t, summary.Breakevens)
}
