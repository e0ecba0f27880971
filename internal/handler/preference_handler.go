package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-class-api/internal/dto"
	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/service"
	"github.com/noah-isme/dance-class-api/pkg/response"
)

type preferenceService interface {
	Toggle(ctx context.Context, userID string, kind models.PreferenceKind, id string) (bool, error)
	Preferences(ctx context.Context, userID string) models.PreferenceSet
	Settings(ctx context.Context, sessionID string) models.AppSettings
	SaveSettings(ctx context.Context, sessionID string, settings models.AppSettings) (models.AppSettings, error)
}

// PreferenceHandler serves interest, attendance and favorite toggles plus saved settings.
type PreferenceHandler struct {
	catalog catalogProvider
	prefs   preferenceService
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(catalog catalogProvider, prefs preferenceService) *PreferenceHandler {
	return &PreferenceHandler{catalog: catalog, prefs: prefs}
}

// ToggleInterest godoc
// @Summary Toggle interest in a class
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{id}/interest [post]
func (h *PreferenceHandler) ToggleInterest(c *gin.Context) {
	h.toggle(c, models.PreferenceInterested)
}

// ToggleAttendance godoc
// @Summary Toggle attendance for a class
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance [post]
func (h *PreferenceHandler) ToggleAttendance(c *gin.Context) {
	h.toggle(c, models.PreferenceAttending)
}

// ToggleFavorite godoc
// @Summary Toggle a favorite choreographer
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Param id path string true "Choreographer ID"
// @Success 200 {object} response.Envelope
// @Router /choreographers/{id}/favorite [post]
func (h *PreferenceHandler) ToggleFavorite(c *gin.Context) {
	h.toggle(c, models.PreferenceFavorite)
}

func (h *PreferenceHandler) toggle(c *gin.Context, kind models.PreferenceKind) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := service.CheckToggleTarget(h.catalog.Snapshot(), kind, id); err != nil {
		response.Error(c, err)
		return
	}
	active, err := h.prefs.Toggle(c.Request.Context(), session.User.ID, kind, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ToggleResponse{ID: id, Kind: string(kind), Active: active}, nil)
}

// Preferences godoc
// @Summary Preference sets of the session user
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /preferences [get]
func (h *PreferenceHandler) Preferences(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.prefs.Preferences(c.Request.Context(), session.User.ID), nil)
}

// Settings godoc
// @Summary Saved view settings
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *PreferenceHandler) Settings(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	settings := h.prefs.Settings(c.Request.Context(), session.ID)
	response.JSON(c, http.StatusOK, settingsResponse(settings), nil)
}

// SaveSettings godoc
// @Summary Save view settings
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SettingsRequest true "Settings"
// @Success 200 {object} response.Envelope
// @Router /settings [put]
func (h *PreferenceHandler) SaveSettings(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.SettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	filter, err := service.BuildFilter(req.Filters, h.catalog.Location())
	if err != nil {
		response.Error(c, err)
		return
	}
	saved, err := h.prefs.SaveSettings(c.Request.Context(), session.ID, models.AppSettings{PreferredView: req.PreferredView, Filters: filter})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settingsResponse(saved), nil)
}

func settingsResponse(settings models.AppSettings) dto.SettingsRequest {
	return dto.SettingsRequest{PreferredView: settings.PreferredView, Filters: service.FilterRequestFrom(settings.Filters)}
}
