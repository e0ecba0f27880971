package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/service"
	"github.com/noah-isme/dance-class-api/pkg/response"
)

// ScheduleHandler serves the read side of the class catalog.
type ScheduleHandler struct {
	catalog  catalogProvider
	schedule *service.ScheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(catalog catalogProvider, schedule *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{catalog: catalog, schedule: schedule}
}

// List godoc
// @Summary Search classes
// @Tags Classes
// @Produce json
// @Param q query string false "Free text search"
// @Param styles query []string false "Dance styles" collectionFormat(multi)
// @Param choreographers query []string false "Choreographer ids or names" collectionFormat(multi)
// @Param studios query []string false "Studio names" collectionFormat(multi)
// @Param start query string false "Range start (RFC 3339 or YYYY-MM-DD)"
// @Param end query string false "Range end (RFC 3339 or YYYY-MM-DD)"
// @Param upcoming query bool false "Only upcoming classes"
// @Param use_saved query bool false "Apply saved filters"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	catalog := h.catalog.Snapshot()
	query, err := parseScheduleQuery(c, session, h.catalog.Location())
	if err != nil {
		response.Error(c, err)
		return
	}
	views, err := h.schedule.List(session, catalog, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, pagination := paginate(c, views)
	catalogJSON(c, catalog, page, pagination)
}

// Schedule godoc
// @Summary Classes grouped by local day
// @Tags Classes
// @Produce json
// @Param tz query string false "IANA timezone of the viewer"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Schedule(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	catalog := h.catalog.Snapshot()
	query, err := parseScheduleQuery(c, session, h.catalog.Location())
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.schedule.Schedule(session, catalog, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	catalogJSON(c, catalog, view, nil)
}

// Upcoming godoc
// @Summary Upcoming classes
// @Tags Classes
// @Produce json
// @Param limit query int false "Maximum number of classes"
// @Success 200 {object} response.Envelope
// @Router /classes/upcoming [get]
func (h *ScheduleHandler) Upcoming(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	catalog := h.catalog.Snapshot()
	catalogJSON(c, catalog, h.schedule.Upcoming(session, catalog, queryLimit(c)), nil)
}

// Featured godoc
// @Summary Featured classes
// @Tags Classes
// @Produce json
// @Param limit query int false "Maximum number of classes"
// @Success 200 {object} response.Envelope
// @Router /classes/featured [get]
func (h *ScheduleHandler) Featured(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	catalog := h.catalog.Snapshot()
	catalogJSON(c, catalog, h.schedule.Featured(session, catalog, queryLimit(c)), nil)
}

// Get godoc
// @Summary Class detail
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	catalog := h.catalog.Snapshot()
	view, err := h.schedule.Class(session, catalog, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	catalogJSON(c, catalog, view, nil)
}

// Owned godoc
// @Summary Classes owned by the session user
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/classes [get]
func (h *ScheduleHandler) Owned(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	catalog := h.catalog.Snapshot()
	catalogJSON(c, catalog, h.schedule.Owned(session, catalog), nil)
}

// FilterOptions godoc
// @Summary Facet values present in the catalog
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /filters/options [get]
func (h *ScheduleHandler) FilterOptions(c *gin.Context) {
	catalog := h.catalog.Snapshot()
	catalogJSON(c, catalog, h.schedule.FilterOptions(catalog), nil)
}

// Styles godoc
// @Summary Dance style catalogue
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /styles [get]
func (h *ScheduleHandler) Styles(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.DanceStyles, nil)
}
