package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder handles metrics recording and exposure
type Recorder struct {
	gatherer prometheus.Gatherer

	// API metrics
	apiRequestCounter   *prometheus.CounterVec
	apiLatencyHistogram *prometheus.HistogramVec

	// Calculation metrics
	calcCounter        *prometheus.CounterVec
	calcLatency        *prometheus.HistogramVec
	chartSizeHistogram *prometheus.HistogramVec
	legCountHistogram  *prometheus.HistogramVec

	// Transport metrics
	wsClientsGauge       prometheus.Gauge
	streamMessageCounter *prometheus.CounterVec
}

// NewRecorder creates a recorder registered with the default Prometheus registry
func NewRecorder() *Recorder {
	return NewRecorderWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewRecorderWithRegistry creates a recorder registered with reg and served from gatherer
func NewRecorderWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: gatherer,

		// API metrics
		apiRequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payoff_api_requests_total",
				Help: "The total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		apiLatencyHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payoff_api_latency_seconds",
				Help:    "API request latency distribution",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // From 0.5ms to ~1s
			},
			[]string{"method", "path"},
		),

		// Calculation metrics
		calcCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payoff_calculations_total",
				Help: "The total number of payoff calculations",
			},
			[]string{"kind"},
		),
		calcLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payoff_calculation_latency_seconds",
				Help:    "Payoff calculation latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10), // From 1µs to ~0.26s
			},
			[]string{"kind"},
		),
		chartSizeHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payoff_chart_points",
				Help:    "Number of points produced per calculation",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"kind"},
		),
		legCountHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payoff_option_legs",
				Help:    "Number of option legs per calculation",
				Buckets: prometheus.LinearBuckets(0, 2, 10),
			},
			[]string{"kind"},
		),

		// Transport metrics
		wsClientsGauge: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "payoff_websocket_clients",
				Help: "Number of connected WebSocket clients",
			},
		),
		streamMessageCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payoff_stream_messages_total",
				Help: "Stream messages handled by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Handler serves the metrics gathered by this recorder's registry
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// RecordAPIRequest records metrics for an API request
func (r *Recorder) RecordAPIRequest(method, path string, status int, latency time.Duration) {
	r.apiRequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.apiLatencyHistogram.WithLabelValues(method, path).Observe(latency.Seconds())
}

// RecordCalculation records metrics for a payoff calculation
func (r *Recorder) RecordCalculation(kind string, legs, points int, latency time.Duration) {
	r.calcCounter.WithLabelValues(kind).Inc()
	r.calcLatency.WithLabelValues(kind).Observe(latency.Seconds())
	r.chartSizeHistogram.WithLabelValues(kind).Observe(float64(points))
	r.legCountHistogram.WithLabelValues(kind).Observe(float64(legs))
}

// SetWebSocketClients records the current number of WebSocket clients
func (r *Recorder) SetWebSocketClients(count int) {
	r.wsClientsGauge.Set(float64(count))
}

// RecordStreamMessage records the outcome of one consumed stream message
func (r *Recorder) RecordStreamMessage(outcome string) {
	r.streamMessageCounter.WithLabelValues(outcome).Inc()
}
