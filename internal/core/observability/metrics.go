// Package observability holds the service's Prometheus collectors.
package observability

import (
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var scenarioLabel atomic.Value

func init() {
	scenarioLabel.Store("baseline")
}

func SetScenario(s string) {
	if s == "" {
		s = "baseline"
	}
	scenarioLabel.Store(s)
}

func getScenario() string {
	if v := scenarioLabel.Load(); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "baseline"
}

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status", "scenario"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"method", "route", "status", "scenario"},
	)

	queryDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_duration_seconds",
			Help:    "Time spent computing all projections of one query.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"scenario"},
	)

	projectionRows = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projection_rows",
			Help:    "Rows (or points) returned per projection.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		},
		[]string{"projection"},
	)

	queryErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_errors_total",
			Help: "Queries rejected or failed, by kind.",
		},
		[]string{"kind"},
	)

	cacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Result cache lookups by outcome and tier.",
		},
		[]string{"outcome", "tier", "scenario"},
	)

	cacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_op_total",
			Help: "Redis cache operations by op and result.",
		},
		[]string{"op", "result"},
	)

	redisOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Latency of Redis operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op"},
	)

	datasetRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dataset_records",
		Help: "Number of incident records loaded into the store.",
	})

	queryEventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_events_dropped_total",
		Help: "Query events dropped because the publish queue was full.",
	})

	serviceCollectors = []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDurationSeconds,
		queryDurationSeconds,
		projectionRows,
		queryErrors,
		cacheResults,
		cacheOps,
		redisOpDuration,
		datasetRecords,
		queryEventsDropped,
	}
)

// Init registers the service collectors with reg. Registering the same
// collectors twice on one registry is a no-op.
func Init(reg prometheus.Registerer) error {
	if reg == nil {
		return nil
	}
	for _, c := range serviceCollectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	s := getScenario()
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st, s).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st, s).Observe(durationSeconds)
}

func ObserveQuery(durationSeconds float64, points, causeRows, monthRows int) {
	queryDurationSeconds.WithLabelValues(getScenario()).Observe(durationSeconds)
	projectionRows.WithLabelValues("points").Observe(float64(points))
	projectionRows.WithLabelValues("cause_frequency").Observe(float64(causeRows))
	projectionRows.WithLabelValues("monthly_series").Observe(float64(monthRows))
}

func IncQueryError(kind string) {
	queryErrors.WithLabelValues(kind).Inc()
}

func IncCacheHit(tier string) {
	cacheResults.WithLabelValues("hit", tier, getScenario()).Inc()
}

func IncCacheMiss(tier string) {
	cacheResults.WithLabelValues("miss", tier, getScenario()).Inc()
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	cacheOps.WithLabelValues(op, result).Inc()
	redisOpDuration.WithLabelValues(op).Observe(durationSeconds)
}

func SetDatasetRecords(n int) {
	datasetRecords.Set(float64(n))
}

func IncQueryEventDropped() {
	queryEventsDropped.Inc()
}
