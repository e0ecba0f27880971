package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dance-class-api/internal/dto"
	"github.com/noah-isme/dance-class-api/internal/models"
	"github.com/noah-isme/dance-class-api/internal/service"
	appErrors "github.com/noah-isme/dance-class-api/pkg/errors"
)

const (
	timezoneHeader  = "X-Timezone"
	defaultPageSize = 50
	maxPageSize     = 200
)

// viewerTimezone prefers the tz query parameter over the X-Timezone header.
func viewerTimezone(c *gin.Context) string {
	if tz := strings.TrimSpace(c.Query("tz")); tz != "" {
		return tz
	}
	return strings.TrimSpace(c.GetHeader(timezoneHeader))
}

// parseScheduleQuery reads q, styles, choreographers, studios, start, end, tz,
// upcoming and use_saved. Saved filters apply only when no facet is given.
func parseScheduleQuery(c *gin.Context, session *models.Session, fallback *time.Location) (models.ScheduleQuery, error) {
	query := models.ScheduleQuery{
		Query:        strings.TrimSpace(c.Query("q")),
		UpcomingOnly: queryBool(c, "upcoming"),
		Timezone:     viewerTimezone(c),
	}

	loc := fallback
	if query.Timezone != "" {
		parsed, err := time.LoadLocation(query.Timezone)
		if err != nil {
			return query, appErrors.WithDetails(appErrors.ErrValidation, "invalid timezone", map[string]string{"tz": "Unknown timezone " + query.Timezone})
		}
		loc = parsed
	}

	filter, err := service.BuildFilter(dto.FilterRequest{
		Styles:         c.QueryArray("styles"),
		Choreographers: c.QueryArray("choreographers"),
		Studios:        c.QueryArray("studios"),
		Start:          c.Query("start"),
		End:            c.Query("end"),
	}, loc)
	if err != nil {
		return query, err
	}
	if filter.IsEmpty() && queryBool(c, "use_saved") && session != nil {
		filter = session.Settings.Filters
	}
	query.Filter = filter
	return query, nil
}

func queryBool(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && value
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// paginate slices items when page or page_size is present.
func paginate[T any](c *gin.Context, items []T) ([]T, *models.Pagination) {
	if c.Query("page") == "" && c.Query("page_size") == "" {
		return items, nil
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	total := len(items)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return items[start:end], &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
