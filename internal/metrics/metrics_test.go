package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry

	assert.NotPanics(t, func() {
		r.RecordCapability("searchProducts", "ok", time.Millisecond)
		r.RecordUpstream("product", "ok", time.Millisecond)
		r.RecordSearchFallback()
	})
}

func TestRecordCapability(t *testing.T) {
	r := NewRegistry()

	r.RecordCapability("getNutriScore", "ok", 10*time.Millisecond)
	r.RecordCapability("getNutriScore", "ok", 20*time.Millisecond)
	r.RecordCapability("getNutriScore", "not_found", 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.capabilityInvocations.WithLabelValues("getNutriScore", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.capabilityInvocations.WithLabelValues("getNutriScore", "not_found")))
}

func TestRecordSearchFallback(t *testing.T) {
	r := NewRegistry()

	r.RecordSearchFallback()
	r.RecordSearchFallback()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.searchFallbacks))
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordUpstream("prices", "ok", 50*time.Millisecond)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `offmcp_upstream_requests_total{outcome="ok",service="prices"} 1`)
}
