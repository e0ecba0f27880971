package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/service"
)

type staticCatalog struct {
	catalog *models.Catalog
}

func (s staticCatalog) Snapshot() *models.Catalog { return s.catalog }

func serveMetrics(h *MetricsHandler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadyWaitsForCatalog(t *testing.T) {
	h := NewMetricsHandler(nil, staticCatalog{catalog: &models.Catalog{}})
	assert.Equal(t, http.StatusServiceUnavailable, serveMetrics(h, "/ready").Code)

	h = NewMetricsHandler(nil, staticCatalog{catalog: &models.Catalog{
		Classes:    []models.DanceClass{{ID: "c1"}},
		LoadedAt:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		LoadErrors: []string{"failed to load users"},
	}})
	rec := serveMetrics(h, "/ready")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.EqualValues(t, 1, body["classes"])
	assert.Equal(t, []interface{}{"failed to load users"}, body["load_errors"])
}

func TestPrometheusEndpoint(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, serveMetrics(NewMetricsHandler(nil, nil), "/metrics").Code)

	metrics := service.NewMetricsService()
	metrics.RecordToggle("interested", true)
	rec := serveMetrics(NewMetricsHandler(metrics, nil), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "toggle")

	assert.Equal(t, http.StatusOK, serveMetrics(NewMetricsHandler(metrics, nil), "/health").Code)
}
