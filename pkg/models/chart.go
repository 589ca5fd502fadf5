package models

import "time"

// A sampled point on a payoff curve
type ChartPoint struct {
	X float64 `json:"x"` // hypothetical underlying price
	Y float64 `json:"y"` // gain/loss at that price
}

// Parallel-array form of a payoff curve, as consumed by chart libraries that take labels and data separately
type ReturnData struct {
	Labels []float64 `json:"labels"`
	Data   []float64 `json:"data"`
}

// Creates ReturnData from chart points, keeping their order
func NewReturnData(points []ChartPoint) ReturnData {
	rd := ReturnData{
		Labels: make([]float64, len(points)),
		Data:   make([]float64, len(points)),
	}
	for i, p := range points {
		rd.Labels[i] = p.X
		rd.Data[i] = p.Y
	}
	return rd
}

// Aggregate figures over a sampled payoff curve
type ChartSummary struct {
	MinX         float64   `json:"minX"`
	MaxX         float64   `json:"maxX"`
	MinGainLoss  float64   `json:"minGainLoss"`
	MaxGainLoss  float64   `json:"maxGainLoss"`
	SuggestedMin float64   `json:"suggestedMin"`
	SuggestedMax float64   `json:"suggestedMax"`
	Breakevens   []float64 `json:"breakevens"`
}

// A chart together with its summary
type ChartReport struct {
	Points  []ChartPoint `json:"points"`
	Summary ChartSummary `json:"summary"`
}

// A position submitted on the stream for charting
type ChartRequest struct {
	ID       string    `json:"id"`
	Position *Position `json:"position"`
}

// The outcome of a ChartRequest; Error is set instead of Points when the request was unusable
type ChartResult struct {
	ID         string        `json:"id"`
	Points     []ChartPoint  `json:"points,omitempty"`
	Summary    *ChartSummary `json:"summary,omitempty"`
	Error      string        `json:"error,omitempty"`
	ComputedAt time.Time     `json:"computedAt"`
}
