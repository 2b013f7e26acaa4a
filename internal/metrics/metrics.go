package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstrack_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "isstrack_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	datasetAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "isstrack_dataset_age_seconds",
			Help: "Age of the in-memory OEM dataset snapshot in seconds.",
		},
	)

	datasetEpochs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "isstrack_dataset_epochs",
			Help: "Number of epochs in the current OEM dataset.",
		},
	)

	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstrack_fetch_total",
			Help: "Upstream OEM fetch attempts by result (success/fetch_error/parse_error).",
		},
		[]string{"result"},
	)

	geocodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isstrack_geocode_total",
			Help: "Reverse geocoding lookups by result (success/empty/error).",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(datasetAgeSeconds)
	prometheus.MustRegister(datasetEpochs)
	prometheus.MustRegister(fetchTotal)
	prometheus.MustRegister(geocodeTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SetDatasetAge updates the dataset age gauge.
func SetDatasetAge(seconds float64) {
	datasetAgeSeconds.Set(seconds)
}

// SetDatasetEpochs updates the dataset epoch count gauge.
func SetDatasetEpochs(n int) {
	datasetEpochs.Set(float64(n))
}

// RecordFetch counts one upstream fetch attempt.
func RecordFetch(result string) {
	fetchTotal.WithLabelValues(result).Inc()
}

// RecordGeocode counts one reverse geocoding lookup.
func RecordGeocode(result string) {
	geocodeTotal.WithLabelValues(result).Inc()
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

		httpRequestsTotal.WithLabelValues(r.URL.Path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(r.URL.Path, r.Method).Observe(duration)
	})
}
