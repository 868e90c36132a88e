package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	functionInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightdesk_function_invocations_total",
			Help: "Total number of query function invocations by outcome.",
		},
		[]string{"function", "outcome"},
	)
	functionDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flightdesk_function_duration_seconds",
			Help:    "Query function latency, including warehouse round trips.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"function"},
	)
	functionRowsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flightdesk_function_rows_returned",
			Help:    "Number of rows returned per successful invocation.",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 500, 1000},
		},
		[]string{"function"},
	)
	warehouseQueryDurationMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flightdesk_warehouse_query_duration_ms",
			Help:    "Warehouse query execution and materialization latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
	)
	warehouseQueryFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flightdesk_warehouse_query_failures_total",
			Help: "Total number of failed warehouse queries.",
		},
	)
)

const (
	OutcomeOK              = "ok"
	OutcomeInvalidArgument = "invalid_argument"
	OutcomeError           = "error"
)

func init() {
	prometheus.MustRegister(
		functionInvocationsTotal,
		functionDurationSeconds,
		functionRowsReturned,
		warehouseQueryDurationMs,
		warehouseQueryFailuresTotal,
	)
}

func ObserveFunction(function, outcome string, rows int, elapsed time.Duration) {
	functionInvocationsTotal.WithLabelValues(function, outcome).Inc()
	functionDurationSeconds.WithLabelValues(function).Observe(elapsed.Seconds())
	if outcome == OutcomeOK {
		functionRowsReturned.WithLabelValues(function).Observe(float64(rows))
	}
}

func ObserveWarehouseQuery(elapsed time.Duration, err error) {
	warehouseQueryDurationMs.Observe(float64(elapsed.Milliseconds()))
	if err != nil {
		warehouseQueryFailuresTotal.Inc()
	}
}
