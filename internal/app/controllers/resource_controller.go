package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/educareway/internal/app/models/dto"
	"github.com/yigit/educareway/internal/app/services"
	"github.com/yigit/educareway/internal/middleware"
	"github.com/yigit/educareway/internal/pkg/apperrors"
)

// multipartOverhead leaves room for the form fields around the file part
const multipartOverhead int64 = 1 << 20

// ResourceController handles study resource operations
type ResourceController struct {
	resourceService services.ResourceService
	maxUploadSize   int64
	logger          zerolog.Logger
}

// NewResourceController creates a new ResourceController
func NewResourceController(resourceService services.ResourceService, maxUploadSize int64, logger zerolog.Logger) *ResourceController {
	return &ResourceController{
		resourceService: resourceService,
		maxUploadSize:   maxUploadSize,
		logger:          logger,
	}
}

// ListBySubject returns the resources of a subject
// @Summary List subject resources
// @Description Returns the active resources of a subject ordered by unit number then newest first. File contents are never included.
// @Tags resources
// @Produce json
// @Param id path string true "Subject ID" format(uuid)
// @Param type query string false "Filter by category" Enums(notes, video, reference_book)
// @Success 200 {object} dto.APIResponse{data=[]models.Resource} "Resources retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid subject ID or type"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /resources/subject/{id} [get]
func (c *ResourceController) ListBySubject(ctx *gin.Context) {
	subjectID, ok := parseUUIDParam(ctx, "id", "Subject")
	if !ok {
		return
	}

	resources, err := c.resourceService.ListBySubject(ctx.Request.Context(), subjectID, ctx.Query("type"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, http.StatusOK, resources)
}

// Download streams the stored file of a resource
// @Summary Download a resource file
// @Tags resources
// @Produce application/octet-stream
// @Param id path string true "Resource ID" format(uuid)
// @Success 200 {file} binary "File content"
// @Failure 400 {object} dto.ErrorResponse "Invalid resource ID"
// @Failure 404 {object} dto.ErrorResponse "Resource or file not found"
// @Router /resources/download/{id} [get]
func (c *ResourceController) Download(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id", "Resource")
	if !ok {
		return
	}

	res, err := c.resourceService.Download(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	contentType := "application/octet-stream"
	if res.MimeType != nil && *res.MimeType != "" {
		contentType = *res.MimeType
	}
	fileName := "resource-" + res.ID.String()
	if res.FileName != nil && *res.FileName != "" {
		fileName = *res.FileName
	}

	ctx.Header("Content-Disposition", contentDisposition(fileName))
	ctx.Data(http.StatusOK, contentType, res.FileData)
}

// contentDisposition builds an attachment header with a quoted file name
func contentDisposition(fileName string) string {
	safe := strings.NewReplacer(`"`, "'", "\r", "", "\n", "").Replace(fileName)
	return fmt.Sprintf(`attachment; filename="%s"`, safe)
}

// Upload handles multipart resource uploads
// @Summary Upload a resource
// @Description Uploads a file resource (notes, reference_book) or registers a video link. The file type is detected from its content.
// @Tags resources
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param subjectId formData string true "Subject ID"
// @Param title formData string true "Resource title"
// @Param type formData string true "Category" Enums(notes, video, reference_book)
// @Param url formData string false "Video URL, required for type video"
// @Param imageUrl formData string false "Thumbnail URL"
// @Param unitNumber formData integer false "Unit number"
// @Param description formData string false "Description"
// @Param file formData file false "PDF, PPT, PPTX, DOC, DOCX, JPEG or PNG"
// @Success 201 {object} dto.APIResponse{data=models.Resource} "Resource uploaded successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid form data or unsupported file type"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin access required"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Router /resources/upload [post]
func (c *ResourceController) Upload(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadSize+multipartOverhead)

	var form dto.UploadResourceForm
	if err := ctx.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.HandleAPIError(ctx, apperrors.ErrFileTooLarge)
			return
		}
		c.logger.Warn().Err(err).Msg("Invalid resource upload form")
		respondBindError(ctx, err)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.HandleAPIError(ctx, apperrors.ErrFileTooLarge)
			return
		}
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid file upload").
			WithField("file").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	res, err := c.resourceService.Upload(ctx.Request.Context(), &form, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, http.StatusCreated, res)
}

// CreateVideo adds a video link
// @Summary Add a video resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateVideoRequest true "Video information"
// @Success 201 {object} dto.APIResponse{data=models.Resource} "Video added successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin access required"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /resources/video [post]
func (c *ResourceController) CreateVideo(ctx *gin.Context) {
	var req dto.CreateVideoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	res, err := c.resourceService.CreateVideo(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, http.StatusCreated, res)
}

// UpdateResource changes resource metadata
// @Summary Update a resource
// @Description Updates title, description, unit number, image or video URL. The stored file cannot be replaced.
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID" format(uuid)
// @Param request body dto.UpdateResourceRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Resource} "Resource updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin access required"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Router /resources/{id} [put]
func (c *ResourceController) UpdateResource(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id", "Resource")
	if !ok {
		return
	}

	var req dto.UpdateResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	res, err := c.resourceService.UpdateResource(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, http.StatusOK, res)
}

// DeleteResource deactivates a resource
// @Summary Delete a resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID" format(uuid)
// @Success 200 {object} dto.APIResponse "Resource deleted successfully"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin access required"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Router /resources/{id} [delete]
func (c *ResourceController) DeleteResource(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id", "Resource")
	if !ok {
		return
	}

	if err := c.resourceService.DeleteResource(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Resource deleted successfully"))
}
