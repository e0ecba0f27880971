package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-class-api/internal/models"
)

type dashboardService interface {
	Dashboard(session *models.Session, catalog *models.Catalog) *models.Dashboard
}

// DashboardHandler exposes the personal overview.
type DashboardHandler struct {
	catalog   catalogProvider
	dashboard dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(catalog catalogProvider, dashboard dashboardService) *DashboardHandler {
	return &DashboardHandler{catalog: catalog, dashboard: dashboard}
}

// Get godoc
// @Summary Personal dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	catalog := h.catalog.Snapshot()
	catalogJSON(c, catalog, h.dashboard.Dashboard(session, catalog), nil)
}
