package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTPRequestGroupsStatus(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/v1/bills", http.MethodGet, "4xx"))

	ObserveHTTPRequest("/api/v1/bills", http.MethodGet, http.StatusNotFound, 3*time.Millisecond)
	ObserveHTTPRequest("/api/v1/bills", http.MethodGet, http.StatusBadRequest, time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/api/v1/bills", http.MethodGet, "4xx"))
	require.Equal(t, before+2, after)
}

func TestUpdateJobMetricsCountsFailures(t *testing.T) {
	before := testutil.ToFloat64(ScheduledJobFailuresTotal.WithLabelValues("thresholds"))

	UpdateJobMetrics("thresholds", time.Now(), nil)
	UpdateJobMetrics("thresholds", time.Now(), errors.New("store unavailable"))

	require.Equal(t, before+1, testutil.ToFloat64(ScheduledJobFailuresTotal.WithLabelValues("thresholds")))
	require.Greater(t, testutil.ToFloat64(ScheduledJobLastRun.WithLabelValues("thresholds")), 0.0)
}

func TestStatusClass(t *testing.T) {
	require.Equal(t, "2xx", statusClass(http.StatusCreated))
	require.Equal(t, "3xx", statusClass(http.StatusNotModified))
	require.Equal(t, "4xx", statusClass(http.StatusTooManyRequests))
	require.Equal(t, "5xx", statusClass(http.StatusBadGateway))
}
