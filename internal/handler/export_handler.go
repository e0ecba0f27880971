package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-class-api/internal/dto"
	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/service"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
	"github.com/noah-isme/dance-class-api/pkg/response"
)

type exportService interface {
	CreateJob(ctx context.Context, session *models.Session, req dto.ExportRequest, loc *time.Location) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, session *models.Session, id string) (*dto.ExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

var exportMimeTypes = map[models.ExportFormat]string{
	models.ExportFormatCSV: "text/csv",
	models.ExportFormatPDF: "application/pdf",
}

// ExportHandler exposes asynchronous schedule exports.
type ExportHandler struct {
	catalog catalogProvider
	exports exportService
}

// NewExportHandler constructs the handler. A nil service disables exports.
func NewExportHandler(catalog catalogProvider, exports exportService) *ExportHandler {
	return &ExportHandler{catalog: catalog, exports: exports}
}

// Create godoc
// @Summary Queue a schedule export
// @Tags Exports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.ExportRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Timezone == "" {
		req.Timezone = viewerTimezone(c)
	}
	job, err := h.exports.CreateJob(c.Request.Context(), session, req, h.catalog.Location())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Status godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	status, err := h.exports.GetStatus(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.exports.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	info, err := result.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	mime, ok := exportMimeTypes[result.Format]
	if !ok {
		mime = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), mime, result.File, nil)
}

func (h *ExportHandler) enabled(c *gin.Context) bool {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return false
	}
	return true
}
