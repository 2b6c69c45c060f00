package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()

	m.Begin()
	m.ObserveRequest(http.MethodGet, "/user/", http.StatusOK, 5*time.Millisecond)
	m.Begin()
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/user/", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inflight))
}

func TestRecordMount(t *testing.T) {
	m := New()

	m.RecordMount("/user", 2)
	m.RecordMount("/user", 1)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.mounted.WithLabelValues("/user")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordMount("/", 6)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `deroute_router_mounted_routes{prefix="/"} 6`)
}
