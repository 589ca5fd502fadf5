package payoff

import (
	"gonum.org/v1/gonum/floats"

	"github.com/rzzdr/payoff-pipeline/pkg/models"
)

// Summarize reduces a sampled payoff curve to its extremes, axis bounds padded by
// the current price, and the prices where the curve crosses zero. points must be
// sorted by x.
func Summarize(points []models.ChartPoint, price float64) models.ChartSummary {
	summary := models.ChartSummary{Breakevens: make([]float64, 0)}
	if len(points) == 0 {
		return summary
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	summary.MinX = floats.Min(xs)
	summary.MaxX = floats.Max(xs)
	summary.MinGainLoss = floats.Min(ys)
	summary.MaxGainLoss = floats.Max(ys)
	summary.SuggestedMin = summary.MinGainLoss - price
	summary.SuggestedMax = summary.MaxGainLoss + price
	summary.Breakevens = zeroCrossings(points)

	return summary
}

// zeroCrossings interpolates linearly between samples, which is exact for a
// curve sampled at every slope change
func zeroCrossings(points []models.ChartPoint) []float64 {
	crossings := make([]float64, 0)
	add := func(x float64) {
		if n := len(crossings); n > 0 && crossings[n-1] == x {
			return
		}
		crossings = append(crossings, x)
	}

	for i, p := range points {
		if p.Y == 0 {
			add(p.X)
			continue
		}
		if i+1 == len(points) {
			break
		}
		next := points[i+1]
		if next.Y != 0 && (p.Y < 0) != (next.Y < 0) {
			add(p.X + (0-p.Y)*(next.X-p.X)/(next.Y-p.Y))
		}
	}
	return crossings
}
