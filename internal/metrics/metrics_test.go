package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics(t *testing.T) {
	m := New()

	var generation uint64 = 3
	m.Register(StoreGauge(func() uint64 { return generation }))

	m.ObserveHTTP(http.MethodPost, http.StatusConflict, 40*time.Millisecond)
	m.ObserveHTTP(http.MethodPost, http.StatusConflict, 10*time.Millisecond)
	m.ObserveGatewayCall("getAll", 300*time.Millisecond, nil)
	m.ObserveGatewayCall("create", time.Second, errors.New("timeout"))

	body := scrape(t, m)
	assert.Contains(t, body, `barangay_http_requests_total{code="409",method="POST"} 2`)
	assert.Contains(t, body, `barangay_gateway_calls_total{action="getAll",outcome="ok"} 1`)
	assert.Contains(t, body, `barangay_gateway_calls_total{action="create",outcome="error"} 1`)
	assert.Contains(t, body, `barangay_gateway_call_duration_seconds_count{action="create"} 1`)
	assert.Contains(t, body, "barangay_store_generation 3")
	assert.Contains(t, body, "go_goroutines")
}
