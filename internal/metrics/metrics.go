// Package metrics provides Prometheus metrics collection for the calculator service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, route, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, route, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// CalculationsTotal tracks calculations by load mode and outcome.
	CalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cbm_calculations_total",
			Help: "Total number of shipment calculations",
		},
		[]string{"mode", "status"},
	)

	// CalculationDuration tracks engine run time.
	CalculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cbm_calculation_duration_seconds",
			Help:    "Shipment calculation duration in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)

	// CacheOperationsTotal tracks result cache lookups.
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cbm_cache_operations_total",
			Help: "Total number of result cache operations",
		},
		[]string{"operation", "result"},
	)

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_requests_rate_limited_total",
			Help: "Total number of HTTP requests rejected by the rate limiter",
		},
	)
)

// RecordCalculation records metrics for a single calculation.
func RecordCalculation(duration time.Duration, mode, status string) {
	CalculationDuration.Observe(duration.Seconds())
	CalculationsTotal.WithLabelValues(mode, status).Inc()
}

// RecordCacheOperation records metrics for a cache operation.
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordRateLimited counts one request rejected by the rate limiter.
func RecordRateLimited() {
	RateLimitedTotal.Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latencies. route labels the
// request; callers should pass the matched pattern rather than the raw path
// to keep cardinality bounded.
func Middleware(route func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		labels := []string{r.Method, route(r), strconv.Itoa(rec.status)}
		HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		HTTPRequestTotal.WithLabelValues(labels...).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
