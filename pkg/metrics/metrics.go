package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	CatalogCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_call_latency_ms",
			Help:    "Catalog gateway call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"action", "status"},
	)

	PlansBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plans_built_total",
			Help: "Total number of production plans computed",
		},
		[]string{"operation"}, // operation: build, reorder, move
	)

	OptimizerPasses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "optimizer_passes_total",
			Help: "Total number of machine allocation passes",
		},
	)

	PlanAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_alerts_total",
			Help: "Total number of alerts raised by plan builds",
		},
		[]string{"severity"},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordCatalogCallLatency(action, status string, duration time.Duration) {
	CatalogCallLatency.WithLabelValues(action, status).Observe(float64(duration.Milliseconds()))
}

func IncrementPlansBuilt(operation string) {
	PlansBuilt.WithLabelValues(operation).Inc()
}

func IncrementPlanAlert(severity string) {
	PlanAlerts.WithLabelValues(severity).Inc()
}
