package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-class-api/internal/dto"
	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/pkg/response"
	"github.com/noah-isme/dance-class-api/pkg/youtube"
)

type profileService interface {
	UpdateProfile(ctx context.Context, session *models.Session, req dto.UpdateProfileRequest) (*models.User, error)
	PublicProfile(ctx context.Context, session *models.Session, catalog *models.Catalog, username string) (*models.ChoreographerProfile, error)
	ValidateVideo(raw, origin string) youtube.VideoInfo
}

// ProfileHandler serves own-profile edits, public choreographer pages and video checks.
type ProfileHandler struct {
	catalog  catalogProvider
	profiles profileService
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(catalog catalogProvider, profiles profileService) *ProfileHandler {
	return &ProfileHandler{catalog: catalog, profiles: profiles}
}

// Get godoc
// @Summary Own profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, session.User, nil)
}

// Update godoc
// @Summary Update own profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.profiles.UpdateProfile(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Public godoc
// @Summary Public choreographer page
// @Tags Profile
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /choreographers/{username} [get]
func (h *ProfileHandler) Public(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	catalog := h.catalog.Snapshot()
	profile, err := h.profiles.PublicProfile(c.Request.Context(), session, catalog, c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	catalogJSON(c, catalog, profile, nil)
}

// ValidateVideo godoc
// @Summary Validate a YouTube link
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body dto.VideoValidateRequest true "Video link"
// @Success 200 {object} response.Envelope
// @Router /videos/validate [post]
func (h *ProfileHandler) ValidateVideo(c *gin.Context) {
	var req dto.VideoValidateRequest
	if !bindJSON(c, &req) {
		return
	}
	response.JSON(c, http.StatusOK, h.profiles.ValidateVideo(req.URL, req.Origin), nil)
}
