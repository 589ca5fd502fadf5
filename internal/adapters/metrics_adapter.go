package adapters

import (
	"time"

	"github.com/rzzdr/payoff-pipeline/internal/payoff"
	"github.com/rzzdr/payoff-pipeline/internal/stream"
	"github.com/rzzdr/payoff-pipeline/internal/websocket"
	"github.com/rzzdr/payoff-pipeline/pkg/metrics"
)

// MetricsAdapter adapts *metrics.Recorder to the narrow recorder interfaces of
// the calculator, the WebSocket hub and the stream processor. A nil recorder
// turns every call into a no-op.
type MetricsAdapter struct {
	recorder *metrics.Recorder
}

var (
	_ payoff.MetricsRecorder    = (*MetricsAdapter)(nil)
	_ websocket.MetricsRecorder = (*MetricsAdapter)(nil)
	_ stream.MetricsRecorder    = (*MetricsAdapter)(nil)
)

// NewMetricsAdapter creates a new MetricsAdapter
func NewMetricsAdapter(recorder *metrics.Recorder) *MetricsAdapter {
	return &MetricsAdapter{
		recorder: recorder,
	}
}

// RecordCalculation implements payoff.MetricsRecorder
func (a *MetricsAdapter) RecordCalculation(kind string, legs, points int, latency time.Duration) {
	if a.recorder != nil {
		a.recorder.RecordCalculation(kind, legs, points, latency)
	}
}

// SetClientCount implements websocket.MetricsRecorder
func (a *MetricsAdapter) SetClientCount(count int) {
	if a.recorder != nil {
		a.recorder.SetWebSocketClients(count)
	}
}

// RecordMessage implements stream.MetricsRecorder
func (a *MetricsAdapter) RecordMessage(outcome string) {
	if a.recorder != nil {
		a.recorder.RecordStreamMessage(outcome)
	}
}
