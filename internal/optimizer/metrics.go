package optimizer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// Package-level tracer for optimizer runs.
var tracer = otel.Tracer("mapfuse.optimizer")

var (
	// passRunsTotal counts pass invocations by pass and result.
	passRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mapfuse_pass_runs_total",
		Help: "Total optimizer pass invocations by pass and result",
	}, []string{"pass", "result"})

	// passChangesTotal counts rewrites applied by each pass.
	passChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mapfuse_pass_changes_total",
		Help: "Total rewrites applied by optimizer passes",
	}, []string{"pass"})

	// passDuration tracks pass latency.
	passDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mapfuse_pass_duration_seconds",
		Help:    "Optimizer pass duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
	}, []string{"pass"})
)
