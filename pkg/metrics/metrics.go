package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector handles Prometheus metrics collection for the clinic core
type MetricsCollector struct {
	serviceName string
	gatherer    prometheus.Gatherer

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	appointmentTransition *prometheus.CounterVec
	emrMergesTotal        *prometheus.CounterVec
	emrEntriesChanged     *prometheus.CounterVec
	expirySweepsTotal     *prometheus.CounterVec
	expiredAppointments   prometheus.Counter
}

// NewMetricsCollector registers every metric on reg. Pass a fresh
// prometheus.NewRegistry() in tests.
func NewMetricsCollector(serviceName string, reg *prometheus.Registry) *MetricsCollector {
	m := &MetricsCollector{
		serviceName: serviceName,
		gatherer:    reg,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code", "service"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "service"},
		),
		appointmentTransition: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appointment_transitions_total",
				Help: "Appointment status transitions by target status and outcome",
			},
			[]string{"to", "outcome", "service"},
		),
		emrMergesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emr_merges_total",
				Help: "EMR change-set merges by outcome",
			},
			[]string{"outcome", "service"},
		),
		emrEntriesChanged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emr_entries_changed_total",
				Help: "EMR collection entries written by collection and change kind",
			},
			[]string{"collection", "kind", "service"},
		),
		expirySweepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appointment_expiry_sweeps_total",
				Help: "Expiry sweep runs by outcome",
			},
			[]string{"outcome", "service"},
		),
		expiredAppointments: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "appointment_expired_total",
				Help:        "Appointments cancelled by the expiry sweep",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
		),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.appointmentTransition,
		m.emrMergesTotal,
		m.emrEntriesChanged,
		m.expirySweepsTotal,
		m.expiredAppointments,
	)

	return m
}

// RecordHTTPRequest records HTTP request metrics
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCode, m.serviceName).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint, m.serviceName).Observe(duration.Seconds())
}

// RecordTransition counts an attempted appointment transition
func (m *MetricsCollector) RecordTransition(to string, err error) {
	m.appointmentTransition.WithLabelValues(to, outcome(err), m.serviceName).Inc()
}

// RecordEmrMerge counts a merge attempt
func (m *MetricsCollector) RecordEmrMerge(err error) {
	m.emrMergesTotal.WithLabelValues(outcome(err), m.serviceName).Inc()
}

// RecordEmrEntries counts entries written to one collection
func (m *MetricsCollector) RecordEmrEntries(collection, kind string, n int) {
	if n == 0 {
		return
	}
	m.emrEntriesChanged.WithLabelValues(collection, kind, m.serviceName).Add(float64(n))
}

// RecordExpirySweep counts a sweep run and the appointments it cancelled
func (m *MetricsCollector) RecordExpirySweep(cancelled int, err error) {
	m.expirySweepsTotal.WithLabelValues(outcome(err), m.serviceName).Inc()
	if err == nil {
		m.expiredAppointments.Add(float64(cancelled))
	}
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// HTTPMiddleware creates middleware for HTTP request metrics. Endpoints are
// labelled by route template so path ids do not explode cardinality.
func (m *MetricsCollector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		m.RecordHTTPRequest(r.Method, endpoint, strconv.Itoa(wrapper.statusCode), time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
