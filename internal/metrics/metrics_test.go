package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CredentialIssued()
	m.CredentialIssued()
	m.ViewCompleted(OutcomeRecorded)
	m.ViewCompleted(OutcomeRateLimited)
	m.ViewCompleted(OutcomeRateLimited)
	m.JobRun("tick_sweep", 7, nil)
	m.JobRun("tick_sweep", 0, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.credentialsIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.viewsCompleted.WithLabelValues(OutcomeRecorded)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.viewsCompleted.WithLabelValues(OutcomeRateLimited)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("tick_sweep", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("tick_sweep", "error")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.jobAffected.WithLabelValues("tick_sweep")))
}

func TestMetrics_Middleware(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/link/{shortCode}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/metrics", m.Handler().ServeHTTP)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/link/abc123", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `route="/link/{shortCode}"`), body)
	assert.True(t, strings.Contains(body, `status="418"`), body)
}
