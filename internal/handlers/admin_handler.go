package handlers

import (
	"net/http"

	"ireporter/internal/config"
	"ireporter/internal/middleware"
	"ireporter/internal/models"
	"ireporter/internal/observability"
	"ireporter/internal/serviceinterfaces"
	contextutils "ireporter/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the moderation surface. Routes using it must sit
// behind middleware.RequireModerator.
type AdminHandler struct {
	reportService serviceinterfaces.ReportService
	cfg           *config.Config
	logger        *observability.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reportService serviceinterfaces.ReportService, cfg *config.Config, logger *observability.Logger) *AdminHandler {
	return &AdminHandler{
		reportService: reportService,
		cfg:           cfg,
		logger:        logger,
	}
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus handles PUT /v1/admin/reports/:id/status.
func (h *AdminHandler) SetStatus(c *gin.Context) {
	principalID, ok := middleware.PrincipalID(c)
	if !ok {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleValidationError(c, "status", "is required")
		return
	}

	report, err := h.reportService.SetReportStatus(c.Request.Context(), principalID, id, models.ReportStatus(req.Status))
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
