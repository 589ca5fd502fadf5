package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

// PrometheusServer is a server that exposes Prometheus metrics on a dedicated port
type PrometheusServer struct {
	server *http.Server
	log    *logger.Logger
}

// NewPrometheusServer creates a new Prometheus metrics server for recorder
func NewPrometheusServer(port int, recorder *Recorder) *PrometheusServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())

	return &PrometheusServer{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: logger.GetLogger("metrics.prometheus"),
	}
}

// Start starts the Prometheus metrics server. It returns nil after Stop.
func (p *PrometheusServer) Start() error {
	p.log.Infof("Starting Prometheus metrics server on %s", p.server.Addr)
	if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the Prometheus metrics server
func (p *PrometheusServer) Stop(ctx context.Context) error {
	p.log.Info("Stopping Prometheus metrics server")
	return p.server.Shutdown(ctx)
}
