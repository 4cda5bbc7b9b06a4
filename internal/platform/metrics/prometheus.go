package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineMetrics holds the reconciliation engine's Prometheus metrics.
type EngineMetrics struct {
	Registry               *prometheus.Registry
	SweepsTotal            prometheus.Counter
	SweepDuration          prometheus.Histogram
	SettlementsTotal       *prometheus.CounterVec
	NotificationsTotal     *prometheus.CounterVec
	CandidateErrorsTotal   prometheus.Counter
	CandidatesSkippedTotal *prometheus.CounterVec
}

func NewEngineMetrics(serviceName string) *EngineMetrics {
	registry := prometheus.NewRegistry()

	sweepsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "sweeps_total",
		Help:      "Total number of reconciliation sweeps run.",
	})
	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of reconciliation sweeps.",
		Buckets:   prometheus.DefBuckets,
	})
	settlementsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "settlements_total",
		Help:      "Total number of listings settled, by outcome.",
	}, []string{"outcome"})
	notificationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "notifications_total",
		Help:      "Total number of notification writes, by result.",
	}, []string{"result"})
	candidateErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "candidate_errors_total",
		Help:      "Total number of candidates that failed processing.",
	})
	candidatesSkippedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "candidates_skipped_total",
		Help:      "Total number of candidates skipped, by reason.",
	}, []string{"reason"})

	registry.MustRegister(
		sweepsTotal,
		sweepDuration,
		settlementsTotal,
		notificationsTotal,
		candidateErrorsTotal,
		candidatesSkippedTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &EngineMetrics{
		Registry:               registry,
		SweepsTotal:            sweepsTotal,
		SweepDuration:          sweepDuration,
		SettlementsTotal:       settlementsTotal,
		NotificationsTotal:     notificationsTotal,
		CandidateErrorsTotal:   candidateErrorsTotal,
		CandidatesSkippedTotal: candidatesSkippedTotal,
	}
}

// NewMetricsServer returns an HTTP server exposing the registry on /metrics.
// The caller owns its lifecycle.
func NewMetricsServer(port string, registry *prometheus.Registry, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Infof("Prometheus metrics server configured on port %s", port)
	return srv
}

// ShutdownMetricsServer stops the metrics server, logging instead of failing.
func ShutdownMetricsServer(ctx context.Context, srv *http.Server, log logger.Logger) {
	if srv == nil {
		return
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Error shutting down metrics server: %v", err)
	}
}
