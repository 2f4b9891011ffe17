package api_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/janseva/constituency-admin/internal/api"
	"github.com/janseva/constituency-admin/internal/middleware"
	"github.com/janseva/constituency-admin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.ts.MakeRequest(t, testutil.Request{Method: "GET", Path: "/health"})

	assert.Equal(t, http.StatusOK, resp.Code)
	testutil.AssertJSON(t, resp, "status", "ok")
	assert.NotEmpty(t, resp.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "DENY", resp.Header().Get("X-Frame-Options"))
}

func TestReadinessCheck(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.ts.MakeRequest(t, testutil.Request{Method: "GET", Path: "/ready"})
	assert.Equal(t, http.StatusOK, resp.Code)
	testutil.AssertJSON(t, resp, "status", "ready")

	f.pinger.Fail(errors.New("server selection timeout"))

	resp = f.ts.MakeRequest(t, testutil.Request{Method: "GET", Path: "/ready"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	testutil.AssertJSON(t, resp, "status", "not_ready")
}

func TestMetricsEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.ts.MakeRequest(t, testutil.Request{Method: "GET", Path: "/health"})

	resp := f.ts.MakeRequest(t, testutil.Request{Method: "GET", Path: "/metrics"})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(resp.Raw), `janseva_http_requests_total{code="200",method="GET",route="/health"}`)
}

func TestOpenAPISpecServed(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.ts.MakeRequest(t, testutil.Request{Method: "GET", Path: "/openapi.yaml"})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(resp.Raw), "openapi: 3")
}

func TestUnknownAPIRoute(t *testing.T) {
	f := newAPIFixture(t)
	_, token := f.superadmin(t)

	resp := f.get(t, "/api/does-not-exist", token)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, api.CodeResourceNotFound, resp.ErrorCode())
}

func TestRequestIDPropagated(t *testing.T) {
	f := newAPIFixture(t)
	id := "3f2c6d1e-8a4b-4c1d-9e2f-5a6b7c8d9e0f"

	resp := f.ts.MakeRequest(t, testutil.Request{
		Method:  "GET",
		Path:    "/health",
		Headers: map[string]string{middleware.RequestIDHeader: id},
	})

	assert.Equal(t, id, resp.Header().Get(middleware.RequestIDHeader))
}
