package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satellites_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satellites_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satellites_queries_total",
			Help: "Satellite list queries by data source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satellites_lookups_total",
			Help: "Single-record lookups by data source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	cacheWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satellites_cache_writes_total",
			Help: "Background cache write batches by outcome.",
		},
		[]string{"outcome"},
	)

	cacheRowsInserted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "satellites_cache_rows_inserted_total",
			Help: "Rows newly inserted into the local cache.",
		},
	)

	suspectRows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "satellites_suspect_rows_total",
			Help: "Remote rows cached even though their element set failed validation.",
		},
	)

	remoteDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satellites_remote_request_duration_seconds",
			Help:    "Remote TLE API request duration in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "outcome"},
	)

	connectivityUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "satellites_connectivity_up",
			Help: "1 when a usable network path to the TLE API is believed to exist.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(queriesTotal)
	prometheus.MustRegister(lookupsTotal)
	prometheus.MustRegister(cacheWritesTotal)
	prometheus.MustRegister(cacheRowsInserted)
	prometheus.MustRegister(suspectRows)
	prometheus.MustRegister(remoteDurationSeconds)
	prometheus.MustRegister(connectivityUp)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncQuery counts a list query. source is "remote" or "local"; outcome is
// "ok", "empty" or "error".
func IncQuery(source, outcome string) {
	queriesTotal.WithLabelValues(source, outcome).Inc()
}

// IncLookup counts a single-record lookup.
func IncLookup(source, outcome string) {
	lookupsTotal.WithLabelValues(source, outcome).Inc()
}

// RecordCacheWrite records one background persist batch.
func RecordCacheWrite(inserted int64, err error) {
	if err != nil {
		cacheWritesTotal.WithLabelValues("error").Inc()
		return
	}
	cacheWritesTotal.WithLabelValues("ok").Inc()
	cacheRowsInserted.Add(float64(inserted))
}

// AddSuspectRows counts rows whose element set failed validation.
func AddSuspectRows(n int) {
	suspectRows.Add(float64(n))
}

// ObserveRemoteRequest records the duration of one remote API call.
func ObserveRemoteRequest(endpoint, outcome string, d time.Duration) {
	remoteDurationSeconds.WithLabelValues(endpoint, outcome).Observe(d.Seconds())
}

// SetConnectivity publishes the current connectivity belief.
func SetConnectivity(up bool) {
	if up {
		connectivityUp.Set(1)
		return
	}
	connectivityUp.Set(0)
}

// knownRoutes are exact paths reported under their own label.
var knownRoutes = map[string]bool{
	"/healthz":             true,
	"/readyz":              true,
	"/metrics":             true,
	"/api/v1/satellites":   true,
	"/api/v1/connectivity": true,
	"/api/v1/filters":      true,
}

const satellitePrefix = "/api/v1/satellites/"

// normalizeRoute collapses parameterized and unknown paths so the path label
// stays low-cardinality.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if rest, ok := strings.CutPrefix(path, satellitePrefix); ok && rest != "" && !strings.Contains(rest, "/") {
		return satellitePrefix + "{id}"
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
