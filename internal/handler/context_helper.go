package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-class-api/internal/middleware"
	"github.com/noah-isme/dance-class-api/internal/models"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
	"github.com/noah-isme/dance-class-api/pkg/response"
)

// catalogProvider exposes the current catalog snapshot.
type catalogProvider interface {
	Snapshot() *models.Catalog
	Location() *time.Location
}

func sessionFromContext(c *gin.Context) (*models.Session, bool) {
	session := middleware.CurrentSession(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return session, true
}

// catalogJSON responds with data and surfaces partial catalog load errors in meta.
func catalogJSON(c *gin.Context, catalog *models.Catalog, data interface{}, pagination *models.Pagination) {
	if catalog != nil {
		middleware.SetCatalogErrors(c, catalog.LoadErrors)
	}
	response.JSON(c, http.StatusOK, data, pagination, middleware.ExtractMeta(c))
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}
