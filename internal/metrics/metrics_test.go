package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.ObserveExport("persisted")
	m.ObserveExport("transient")
	m.ObserveExport("transient")
	m.ObserveSkipped(3)
	m.ObserveSkipped(0)
	m.ObserveSave(nil)
	m.ObserveSave(errors.New("boom"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Exports.WithLabelValues("transient")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.SkippedLines))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SettingsSaves.WithLabelValues("error")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/chart", http.StatusOK)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "ukm_ponja_http_requests_total"))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveExport("failed")
	m.ObserveSkipped(1)
	m.ObserveSave(nil)
	m.ObserveRequest("/", 200)
	assert.Nil(t, m.Registry())
}
