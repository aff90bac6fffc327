package handlers

import (
	"strconv"
	"strings"

	"ireporter/internal/config"
	"ireporter/internal/models"
	contextutils "ireporter/internal/utils"

	"github.com/gin-gonic/gin"
)

// ParsePagination reads page/page_size query params, applying the default
// and maximum page size. Non-numeric or non-positive values are rejected so
// the query engine never sees a zero page size.
func ParsePagination(c *gin.Context) (page, pageSize int, err error) {
	page = 1
	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, contextutils.NewValidationError("page", "must be a positive integer")
		}
	}

	pageSize = config.DefaultPageSize
	if raw := c.Query("page_size"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 {
			return 0, 0, contextutils.NewValidationError("page_size", "must be a positive integer")
		}
	}
	if pageSize > config.MaxPageSize {
		pageSize = config.MaxPageSize
	}

	return page, pageSize, nil
}

// ParseReportFilter reads the status/type/search query params.
func ParseReportFilter(c *gin.Context) (models.ReportFilter, error) {
	filter := models.ReportFilter{
		Type:   strings.TrimSpace(c.Query("type")),
		Search: strings.TrimSpace(c.Query("search")),
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.ReportStatus(raw)
		if !status.Valid() {
			return models.ReportFilter{}, contextutils.NewValidationError("status", "unknown status value")
		}
		filter.Status = status
	}

	return filter, nil
}
