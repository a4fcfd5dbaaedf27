package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveReport(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveReport(StatusSuccess, 120*time.Millisecond)
	m.ObserveReport(StatusSuccess, 80*time.Millisecond)
	m.ObserveReport(StatusEmpty, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.reportsGenerated.WithLabelValues(StatusSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.reportsGenerated.WithLabelValues(StatusEmpty)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.buildDuration))
}

func TestObserveRequest(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveRequest(http.MethodPost, "/api/v1/reports", http.StatusOK)
	m.ObserveRequest(http.MethodPost, "/api/v1/reports", http.StatusUnprocessableEntity)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestCount.WithLabelValues("POST", "/api/v1/reports", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestCount.WithLabelValues("POST", "/api/v1/reports", "422")))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register collector")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveReport(StatusError, time.Second)
		m.ObserveRequest("GET", "/healthz", 200)
	})
}

func TestHandler(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	m.ObserveReport(StatusSuccess, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `reports_generated_total{status="success"} 1`)
	assert.Contains(t, rec.Body.String(), "report_build_duration_seconds_count 1")
}
