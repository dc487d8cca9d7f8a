package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBackend("select:Novels", nil, time.Millisecond)
		m.Timeout("Login")
		m.Retry("Fetching novels")
		m.ObserveHTTP("GET", "/api/novels", 200, time.Millisecond)
	})
}

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveBackend("select:Novels", nil, time.Millisecond)
	m.ObserveBackend("select:Novels", errors.New("boom"), time.Millisecond)
	m.Timeout("Login")
	m.Retry("Fetching novels")
	m.Retry("Fetching novels")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("select:Novels", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("select:Novels", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.timeouts.WithLabelValues("Login")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.retries.WithLabelValues("Fetching novels")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Timeout("Login")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "novelhub_operation_timeouts_total"))
}
