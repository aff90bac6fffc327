package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"ireporter/internal/config"
	"ireporter/internal/middleware"
	"ireporter/internal/models"
	"ireporter/internal/observability"
	"ireporter/internal/serviceinterfaces"
	contextutils "ireporter/internal/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler exposes the report lifecycle over HTTP.
type ReportHandler struct {
	reportService serviceinterfaces.ReportService
	cfg           *config.Config
	logger        *observability.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService serviceinterfaces.ReportService, cfg *config.Config, logger *observability.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		cfg:           cfg,
		logger:        logger,
	}
}

// maxMultipartMemory caps in-memory multipart buffering; larger parts spill
// to temp files which readUploadFiles still reads through.
const maxMultipartMemory = 32 << 20

// readUploadFiles extracts the "media" parts of a multipart request.
func (h *ReportHandler) readUploadFiles(c *gin.Context) ([]models.UploadFile, error) {
	if c.Request.MultipartForm == nil {
		if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, contextutils.NewValidationError("media", "malformed multipart body")
		}
	}

	headers := c.Request.MultipartForm.File["media"]
	files := make([]models.UploadFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "failed to open uploaded file %q: %w", header.Filename, err)
		}
		data, err := io.ReadAll(f)
		closeErr := f.Close()
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "failed to read uploaded file %q: %w", header.Filename, err)
		}
		if closeErr != nil {
			h.logger.Warn(c.Request.Context(), "Failed to close uploaded file", map[string]interface{}{"file": header.Filename})
		}
		files = append(files, models.UploadFile{OriginalName: header.Filename, Data: data})
	}
	return files, nil
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// Create handles POST /v1/reports. Accepts JSON, or multipart form-data when
// media files are attached.
func (h *ReportHandler) Create(c *gin.Context) {
	principalID, ok := middleware.PrincipalID(c)
	if !ok {
		HandleAppError(c, contextutils.ErrUnauthorized)
		return
	}

	var req models.CreateReportRequest
	var media []models.UploadFile

	if isMultipart(c) {
		files, err := h.readUploadFiles(c)
		if err != nil {
			HandleAppError(c, err)
			return
		}
		media = files
		req = models.CreateReportRequest{
			Type:        c.PostForm("type"),
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
			Location:    c.PostForm("location"),
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, "body", err.Error())
			return
		}
	}

	report, err := h.reportService.CreateReport(c.Request.Context(), principalID, req, media)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// Get handles GET /v1/reports/:id. Reads are public.
func (h *ReportHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	report, err := h.reportService.GetReport(c.Request.Context(), id)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// updateRequest is the JSON body for report updates. Pointer fields keep
// "absent" distinguishable from an explicit value.
type updateRequest struct {
	Type           *string `json:"type"`
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Location       *string `json:"location"`
	RemoveMediaIDs []int   `json:"remove_media_ids"`
}

// Update handles PATCH /v1/reports/:id. Accepts JSON, or multipart form-data
// when new media files are attached.
func (h *ReportHandler) Update(c *gin.Context) {
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

	var patch models.ReportPatch
	var addMedia []models.UploadFile
	var removeMediaIDs []int

	if isMultipart(c) {
		addMedia, err = h.readUploadFiles(c)
		if err != nil {
			HandleAppError(c, err)
			return
		}
		patch = patchFromForm(c)
		removeMediaIDs, err = parseRemoveIDs(c.PostForm("remove_media_ids"))
		if err != nil {
			HandleAppError(c, err)
			return
		}
	} else {
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, "body", err.Error())
			return
		}
		patch = models.ReportPatch{
			Type:        req.Type,
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
		}
		removeMediaIDs = req.RemoveMediaIDs
	}

	report, err := h.reportService.UpdateReport(c.Request.Context(), principalID, id, patch, addMedia, removeMediaIDs)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// patchFromForm builds a patch from multipart form values; a field left out
// of the form stays nil and so is left unchanged.
func patchFromForm(c *gin.Context) models.ReportPatch {
	var patch models.ReportPatch
	if v, ok := c.GetPostForm("type"); ok {
		patch.Type = &v
	}
	if v, ok := c.GetPostForm("title"); ok {
		patch.Title = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		patch.Description = &v
	}
	if v, ok := c.GetPostForm("location"); ok {
		patch.Location = &v
	}
	return patch
}

func parseRemoveIDs(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || id < 1 {
			return nil, contextutils.NewValidationError("remove_media_ids", "must be a comma-separated list of ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete handles DELETE /v1/reports/:id.
func (h *ReportHandler) Delete(c *gin.Context) {
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

	if err := h.reportService.DeleteReport(c.Request.Context(), principalID, id); err != nil {
		HandleAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List handles GET /v1/reports: the public filtered, paginated feed.
func (h *ReportHandler) List(c *gin.Context) {
	filter, err := ParseReportFilter(c)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	page, pageSize, err := ParsePagination(c)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	result, err := h.reportService.ListReports(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseIDParam(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, contextutils.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
