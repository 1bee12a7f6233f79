package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion outcomes used as the "outcome" label.
const (
	OutcomeIngested      = "ingested"
	OutcomeUnauthorized  = "unauthorized"
	OutcomeBadRequest    = "bad_request"
	OutcomeTooLarge      = "too_large"
	OutcomeInvalid       = "invalid"
	OutcomeDatabaseError = "database_error"
	OutcomeInternalError = "internal_error"
)

// IngestMetrics holds the Prometheus collectors for the ingestion endpoint.
type IngestMetrics struct {
	EventsTotal *prometheus.CounterVec
	Duration    prometheus.Histogram
}

// NewIngestMetrics creates the collectors and registers them with reg.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	f := promauto.With(reg)
	return &IngestMetrics{
		EventsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telemetry",
			Subsystem: "ingest",
			Name:      "events_total",
			Help:      "Total number of ingestion requests by outcome.",
		}, []string{"outcome"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "telemetry",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Time spent handling an ingestion request, store call included.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Observe records one finished request.
func (m *IngestMetrics) Observe(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(outcome).Inc()
	m.Duration.Observe(time.Since(started).Seconds())
}
