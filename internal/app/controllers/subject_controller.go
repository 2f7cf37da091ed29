package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/educareway/internal/app/models/dto"
	"github.com/yigit/educareway/internal/app/services"
	"github.com/yigit/educareway/internal/middleware"
)

// SubjectController handles subject-related operations
type SubjectController struct {
	subjectService services.SubjectService
}

// NewSubjectController creates a new SubjectController
func NewSubjectController(subjectService services.SubjectService) *SubjectController {
	return &SubjectController{
		subjectService: subjectService,
	}
}

// ListBySemester returns the subjects of a semester
// @Summary List semester subjects
// @Description Returns the active subjects of a semester, each with its semester and course
// @Tags subjects
// @Produce json
// @Param id path string true "Semester ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=[]models.Subject} "Subjects retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid semester ID"
// @Failure 404 {object} dto.ErrorResponse "Semester not found"
// @Router /subjects/semester/{id} [get]
func (c *SubjectController) ListBySemester(ctx *gin.Context) {
	semesterID, ok := parseUUIDParam(ctx, "id", "Semester")
	if !ok {
		return
	}

	subjects, err := c.subjectService.ListBySemester(ctx.Request.Context(), semesterID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, http.StatusOK, subjects)
}

// GetSubject returns a subject with its resources
// @Summary Get subject by ID
// @Description Returns an active subject with its active resources (without file contents), semester and course
// @Tags subjects
// @Produce json
// @Param id path string true "Subject ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.Subject} "Subject retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid subject ID"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /subjects/{id} [get]
func (c *SubjectController) GetSubject(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id", "Subject")
	if !ok {
		return
	}

	subject, err := c.subjectService.GetSubject(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, http.StatusOK, subject)
}

// CreateSubject handles subject creation
// @Summary Create a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSubjectRequest true "Subject information"
// @Success 201 {object} dto.APIResponse{data=models.Subject} "Subject created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin access required"
// @Failure 404 {object} dto.ErrorResponse "Semester not found"
// @Failure 409 {object} dto.ErrorResponse "Subject code already exists"
// @Router /subjects [post]
func (c *SubjectController) CreateSubject(ctx *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	subject, err := c.subjectService.CreateSubject(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, http.StatusCreated, subject)
}

// UpdateSubject handles subject updates
// @Summary Update a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID" format(uuid)
// @Param request body dto.UpdateSubjectRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Subject} "Subject updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin access required"
// @Failure 404 {object} dto.ErrorResponse "Subject or semester not found"
// @Failure 409 {object} dto.ErrorResponse "Subject code already exists"
// @Router /subjects/{id} [put]
func (c *SubjectController) UpdateSubject(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id", "Subject")
	if !ok {
		return
	}

	var req dto.UpdateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	subject, err := c.subjectService.UpdateSubject(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, http.StatusOK, subject)
}

// DeleteSubject deactivates a subject
// @Summary Delete a subject
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID" format(uuid)
// @Success 200 {object} dto.APIResponse "Subject deleted successfully"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin access required"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /subjects/{id} [delete]
func (c *SubjectController) DeleteSubject(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id", "Subject")
	if !ok {
		return
	}

	if err := c.subjectService.DeleteSubject(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Subject deleted successfully"))
}
