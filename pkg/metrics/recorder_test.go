package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	return NewRecorderWithRegistry(registry, registry)
}

func TestRecorder_Counters(t *testing.T) {
	r := newTestRecorder()

	r.RecordCalculation("chart", 2, 7, time.Millisecond)
	r.RecordCalculation("chart", 0, 3, time.Millisecond)
	r.RecordCalculation("batch", 4, 12, time.Millisecond)
	r.RecordAPIRequest(http.MethodPost, "/api/v1/payoff/chart", http.StatusOK, time.Millisecond)
	r.RecordStreamMessage("charted")
	r.SetWebSocketClients(3)

	body := scrape(t, r)
	assert.Contains(t, body, `payoff_calculations_total{kind="chart"} 2`)
	assert.Contains(t, body, `payoff_calculations_total{kind="batch"} 1`)
	assert.Contains(t, body, `payoff_api_requests_total{method="POST",path="/api/v1/payoff/chart",status="200"} 1`)
	assert.Contains(t, body, `payoff_stream_messages_total{outcome="charted"} 1`)
	assert.Contains(t, body, "payoff_websocket_clients 3")
	assert.Contains(t, body, `payoff_option_legs_count{kind="chart"} 2`)
}

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		newTestRecorder()
		newTestRecorder()
	})
}
