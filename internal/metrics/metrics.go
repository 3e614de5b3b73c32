// Package metrics defines the Prometheus instrumentation for the API and the
// ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventease"

// Registry is the Prometheus registry all server metrics register against.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// IngestItems counts per-provider ingestion outcomes. The outcome label is
// one of added, skipped, failed.
var IngestItems = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_items_total",
		Help:      "Ingested items by provider and outcome (added, skipped, failed)",
	},
	[]string{"provider", "outcome"},
)

// IngestRuns counts refresh runs per provider and result.
var IngestRuns = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_runs_total",
		Help:      "Ingestion runs by provider and result (ok, error)",
	},
	[]string{"provider", "result"},
)

// IngestDuration observes how long one provider refresh takes.
var IngestDuration = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ingest_duration_seconds",
		Help:      "Duration of one provider ingestion run",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"provider"},
)

// HTTPRequests counts handled HTTP requests.
var HTTPRequests = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, path pattern, and status",
	},
	[]string{"method", "path", "status"},
)

// HTTPDuration observes request latency.
var HTTPDuration = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and path pattern",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "path"},
)
