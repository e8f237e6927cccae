// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// View outcomes reported by ViewCompleted.
const (
	OutcomeRecorded     = "recorded"
	OutcomeRateLimited  = "rate_limited"
	OutcomeInvalidToken = "invalid_token"
)

// Metrics holds the collectors registered for one registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestDuration *prometheus.HistogramVec
	credentialsIssued   prometheus.Counter
	viewsCompleted      *prometheus.CounterVec
	jobRuns             *prometheus.CounterVec
	jobAffected         *prometheus.CounterVec
}

// New registers the collectors on registry. Passing a fresh registry per test
// keeps collectors from colliding.
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "linksplit",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route", "status"},
		),
		credentialsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "linksplit",
			Name:      "view_credentials_issued_total",
			Help:      "Total number of view credentials issued",
		}),
		viewsCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "linksplit",
				Name:      "views_completed_total",
				Help:      "Total number of view completions by outcome",
			},
			[]string{"outcome"},
		),
		jobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "linksplit",
				Name:      "maintenance_job_runs_total",
				Help:      "Total number of maintenance job runs by job and status",
			},
			[]string{"job", "status"},
		),
		jobAffected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "linksplit",
				Name:      "maintenance_job_affected_total",
				Help:      "Total number of rows or entries affected by maintenance jobs",
			},
			[]string{"job"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware observes request latency labelled by the matched chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) CredentialIssued() {
	m.credentialsIssued.Inc()
}

func (m *Metrics) ViewCompleted(outcome string) {
	m.viewsCompleted.WithLabelValues(outcome).Inc()
}

// JobRun records one maintenance run. A nil err counts as success.
func (m *Metrics) JobRun(job string, affected int64, err error) {
	if err != nil {
		m.jobRuns.WithLabelValues(job, "error").Inc()
		return
	}

	m.jobRuns.WithLabelValues(job, "success").Inc()
	m.jobAffected.WithLabelValues(job).Add(float64(affected))
}
