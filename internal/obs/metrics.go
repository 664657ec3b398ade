package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics shared by every handler.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Domain counters.
	pricingComputationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_computations_total",
			Help: "Pricing computations by outcome.",
		},
		[]string{"outcome"},
	)

	responseTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_transitions_total",
			Help: "Response lifecycle transitions by target status.",
		},
		[]string{"status"},
	)

	loginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Login attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// Init registers metrics in the default registry.
func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration,
		pricingComputationsTotal, responseTransitionsTotal, loginAttemptsTotal)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePricing records a pricing computation outcome ("ok" or "error").
func ObservePricing(outcome string) {
	pricingComputationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveTransition records a response lifecycle transition.
func ObserveTransition(status string) {
	responseTransitionsTotal.WithLabelValues(status).Inc()
}

// ObserveLogin records a login attempt outcome ("ok" or "denied").
func ObserveLogin(outcome string) {
	loginAttemptsTotal.WithLabelValues(outcome).Inc()
}

// Instrument wraps a handler with RPS, latency and in-flight tracking.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses resource ids to :id so metric cardinality
// stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	// /v1/<collection>/<id>[/<action>]
	if len(parts) >= 3 && parts[0] == "v1" {
		switch parts[1] {
		case "documents", "company-documents", "responses", "templates":
			if len(parts) == 3 {
				return "/v1/" + parts[1] + "/:id"
			}
			if len(parts) == 4 {
				return "/v1/" + parts[1] + "/:id/" + parts[3]
			}
		}
	}
	return path
}

// statusWriter captures the response code for labeling.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
