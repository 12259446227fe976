package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docstore/internal/config"
	"docstore/internal/http/middleware"
	"docstore/internal/logger"
	"docstore/internal/model"
	serviceMocks "docstore/internal/service/mocks"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.AppConfig {
	return &config.AppConfig{
		Port:       "0",
		APIPrefix:  "/api",
		CORSOrigin: "http://localhost:3000",
		Storage: config.StorageConfig{
			Driver:           config.StorageLocal,
			UploadDir:        t.TempDir(),
			MaxFileSizeBytes: config.DefaultMaxFileSize,
		},
	}
}

func TestNewApp(t *testing.T) {
	cfg := testConfig(t)
	reg := prometheus.NewRegistry()
	prom, err := middleware.NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	svc := new(serviceMocks.MockDocumentService)
	svc.On("List", mock.Anything).Return([]model.Document{}, nil)

	app := newApp(cfg, nil, svc, logger.Discard(), time.UTC, prom, reg)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, middleware.MetricsPath, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `http_requests_total{method="GET",path="/api/documents`)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewStorage(t *testing.T) {
	cfg := testConfig(t)

	store, err := newStorage(cfg)
	require.NoError(t, err)
	assert.NotNil(t, store)

	cfg.Storage.Driver = "ftp"
	_, err = newStorage(cfg)
	assert.Error(t, err)
}
