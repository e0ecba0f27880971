package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-class-api/internal/dto"
	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/pkg/response"
)

type sessionService interface {
	Start(ctx context.Context) (*models.SessionToken, error)
	SwitchUser(ctx context.Context, session *models.Session, userID string) (*models.SessionToken, error)
	SwitchRole(ctx context.Context, session *models.Session, role models.UserRole) (*models.Session, error)
	Clear(ctx context.Context, session *models.Session) (*models.SessionToken, error)
}

// SessionHandler manages demo sessions.
type SessionHandler struct {
	sessions sessionService
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(sessions sessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Start godoc
// @Summary Start a session
// @Tags Session
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Start(c *gin.Context) {
	token, err := h.sessions.Start(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, token)
}

// Current godoc
// @Summary Session aggregate
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Current(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Clear godoc
// @Summary Clear all data of the session and its user
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /session [delete]
func (h *SessionHandler) Clear(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	token, err := h.sessions.Clear(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, token, nil)
}

// SwitchUser godoc
// @Summary Switch the session user
// @Tags Session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SwitchUserRequest true "Target user"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /session/user [put]
func (h *SessionHandler) SwitchUser(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.SwitchUserRequest
	if !bindJSON(c, &req) {
		return
	}
	token, err := h.sessions.SwitchUser(c.Request.Context(), session, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, token, nil)
}

// SwitchRole godoc
// @Summary Switch the session role
// @Tags Session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SwitchRoleRequest true "Target role"
// @Success 200 {object} response.Envelope
// @Router /session/role [put]
func (h *SessionHandler) SwitchRole(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.SwitchRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.sessions.SwitchRole(c.Request.Context(), session, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}
