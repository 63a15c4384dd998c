// Package metrics exposes Prometheus counters for the report dialogue and
// delivery pipeline.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Input error kinds.
const (
	KindInvalidQuantity = "invalid_quantity"
	KindNoSession       = "no_session"
)

// Delivery results.
const (
	ResultDelivered = "delivered"
	ResultFailed    = "failed"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted   prometheus.Counter
	SessionsCompleted prometheus.Counter
	SessionsCancelled prometheus.Counter
	SessionsReplaced  prometheus.Counter
	InputErrors       *prometheus.CounterVec
	Deliveries        *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "reportbot_sessions_started_total",
			Help: "Report sessions started.",
		}),
		SessionsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "reportbot_sessions_completed_total",
			Help: "Report sessions that reached the last product.",
		}),
		SessionsCancelled: f.NewCounter(prometheus.CounterOpts{
			Name: "reportbot_sessions_cancelled_total",
			Help: "Report sessions cancelled by the operator.",
		}),
		SessionsReplaced: f.NewCounter(prometheus.CounterOpts{
			Name: "reportbot_sessions_replaced_total",
			Help: "In-progress sessions discarded by a new start.",
		}),
		InputErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reportbot_input_errors_total",
			Help: "Inbound messages that could not be applied, by kind.",
		}, []string{"kind"}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reportbot_deliveries_total",
			Help: "Spreadsheet deliveries, by result.",
		}, []string{"result"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "reportbot_active_sessions",
			Help: "Sessions currently in progress.",
		}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SessionStarted records a start. replaced is true when an in-progress
// session was overwritten.
func (m *Metrics) SessionStarted(replaced bool) {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
	if replaced {
		m.SessionsReplaced.Inc()
		return
	}
	m.ActiveSessions.Inc()
}

// SessionCompleted records a finished session.
func (m *Metrics) SessionCompleted() {
	if m == nil {
		return
	}
	m.SessionsCompleted.Inc()
	m.ActiveSessions.Dec()
}

// SessionCancelled records a cancellation of an existing session.
func (m *Metrics) SessionCancelled() {
	if m == nil {
		return
	}
	m.SessionsCancelled.Inc()
	m.ActiveSessions.Dec()
}

// InputError records a rejected message.
func (m *Metrics) InputError(kind string) {
	if m == nil {
		return
	}
	m.InputErrors.WithLabelValues(kind).Inc()
}

// Delivery records the outcome of a document delivery.
func (m *Metrics) Delivery(ok bool) {
	if m == nil {
		return
	}
	result := ResultDelivered
	if !ok {
		result = ResultFailed
	}
	m.Deliveries.WithLabelValues(result).Inc()
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
