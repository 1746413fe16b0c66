package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are per-server Prometheus collectors on a private registry, so
// several servers (tests) can coexist in one process.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	recordsTotal    prometheus.Counter
	filteredTotal   prometheus.Counter
}

// NewMetrics registers the HTTP and engine collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "insightloom",
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "insightloom",
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		recordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "insightloom",
			Name:      "records_received_total",
			Help:      "Records received in analysis requests.",
		}),
		filteredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "insightloom",
			Name:      "records_analyzed_total",
			Help:      "Records left after date filtering and passed to the analyzers.",
		}),
	}
	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.recordsTotal, m.filteredTotal)
	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// wrap records count and latency for one named route.
func (m *Metrics) wrap(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	}
}

func (m *Metrics) observeRecords(received, analyzed int) {
	if m == nil {
		return
	}
	m.recordsTotal.Add(float64(received))
	m.filteredTotal.Add(float64(analyzed))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
