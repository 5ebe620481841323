package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "restock"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	logins       *prometheus.CounterVec
	signups      prometheus.Counter
	subscribes   *prometheus.CounterVec
	fulfilled    prometheus.Counter
	notifyFailed prometheus.Counter
	conflicts    *prometheus.CounterVec
}

// New builds a private registry with Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help: "HTTP request latency by method and route.", Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "signups_total",
			Help: "Accounts created.",
		}),
		subscribes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "subscriptions_total",
			Help: "Waiting-list subscriptions by outcome.",
		}, []string{"outcome"}),
		fulfilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "subscribers_fulfilled_total",
			Help: "Subscribers removed from waiting lists by a restock.",
		}),
		notifyFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "notification_failures_total",
			Help: "Restock notifications that could not be delivered.",
		}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "version_conflicts_total",
			Help: "Optimistic concurrency conflicts by entity.",
		}, []string{"entity"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.logins, m.signups,
		m.subscribes, m.fulfilled, m.notifyFailed,
		m.conflicts,
	)
	return m
}

// Handler serves the private registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency labelled by the chi route
// pattern, so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Login outcomes: success, unknown_user, bad_password, error.
func (m *Metrics) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SignUp() {
	if m == nil {
		return
	}
	m.signups.Inc()
}

func (m *Metrics) Subscription(outcome string) {
	if m == nil {
		return
	}
	m.subscribes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Fulfilled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.fulfilled.Add(float64(n))
}

func (m *Metrics) NotificationFailed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.notifyFailed.Add(float64(n))
}

func (m *Metrics) VersionConflict(entity string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(entity).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
