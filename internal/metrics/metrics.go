// Package metrics holds the Prometheus collectors for the companion.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeInvalid = "invalid"
)

// Metrics groups every collector. A nil *Metrics records nothing.
type Metrics struct {
	InsightRequestsTotal  *prometheus.CounterVec
	InsightRequestSeconds *prometheus.HistogramVec
	StaleResponsesTotal   prometheus.Counter
	TranscriptEntries     prometheus.Counter
	CaptureRestartsTotal  *prometheus.CounterVec
	SessionBootstrapTotal *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		InsightRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "companion_insight_requests_total",
				Help: "Insight requests by client mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		InsightRequestSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "companion_insight_request_seconds",
				Help:    "Insight request latency",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"mode"},
		),
		StaleResponsesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "companion_insight_stale_responses_total",
				Help: "Insight responses dropped because a newer request superseded them",
			},
		),
		TranscriptEntries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "companion_transcript_entries_total",
				Help: "Finalized transcript entries appended",
			},
		),
		CaptureRestartsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "companion_capture_restarts_total",
				Help: "Recognition restarts after the engine ended a session on its own",
			},
			[]string{"outcome"},
		),
		SessionBootstrapTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "companion_session_bootstrap_total",
				Help: "Session bootstrap attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) ObserveInsight(mode, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.InsightRequestsTotal.WithLabelValues(mode, outcome).Inc()
	m.InsightRequestSeconds.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func (m *Metrics) StaleResponse() {
	if m == nil {
		return
	}
	m.StaleResponsesTotal.Inc()
}

func (m *Metrics) EntryAppended() {
	if m == nil {
		return
	}
	m.TranscriptEntries.Inc()
}

func (m *Metrics) CaptureRestart(outcome string) {
	if m == nil {
		return
	}
	m.CaptureRestartsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionBootstrap(outcome string) {
	if m == nil {
		return
	}
	m.SessionBootstrapTotal.WithLabelValues(outcome).Inc()
}

// Serve exposes gatherer on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
