package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/service"
)

type catalogSnapshotter interface {
	Snapshot() *models.Catalog
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	catalog catalogSnapshotter
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, catalog catalogSnapshotter) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, catalog: catalog}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness checks.
func (h *MetricsHandler) Health(c *gin.Context) {
	payload := gin.H{"status": "ok"}
	if h.metrics != nil {
		payload["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, payload)
}

// Ready reports 503 until a catalog snapshot has been loaded. Partial load
// errors are reported but do not fail readiness.
func (h *MetricsHandler) Ready(c *gin.Context) {
	var catalog *models.Catalog
	if h.catalog != nil {
		catalog = h.catalog.Snapshot()
	}
	if catalog == nil || catalog.LoadedAt.IsZero() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ready",
		"classes":     len(catalog.Classes),
		"users":       len(catalog.Users),
		"loaded_at":   catalog.LoadedAt.Format(time.RFC3339),
		"load_errors": catalog.LoadErrors,
	})
}
