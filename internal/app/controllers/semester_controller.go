package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/educareway/internal/app/models/dto"
	"github.com/yigit/educareway/internal/app/services"
	"github.com/yigit/educareway/internal/middleware"
)

// SemesterController handles semester-related operations
type SemesterController struct {
	semesterService services.SemesterService
}

// NewSemesterController creates a new SemesterController
func NewSemesterController(semesterService services.SemesterService) *SemesterController {
	return &SemesterController{
		semesterService: semesterService,
	}
}

// ListByCourse returns the semesters of a course
// @Summary List course semesters
// @Tags semesters
// @Produce json
// @Param courseId path string true "Course ID" format(uuid)
// @Success 200 {object} dto.APIResponse{data=[]models.Semester} "Semesters retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid course ID"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /semesters/course/{courseId} [get]
func (c *SemesterController) ListByCourse(ctx *gin.Context) {
	courseID, ok := parseUUIDParam(ctx, "courseId", "Course")
	if !ok {
		return
	}

	semesters, err := c.semesterService.ListByCourse(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, http.StatusOK, semesters)
}

// CreateSemester handles semester creation
// @Summary Create a semester
// @Tags semesters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSemesterRequest true "Semester information"
// @Success 201 {object} dto.APIResponse{data=models.Semester} "Semester created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or semester number out of range"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin access required"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Semester number already exists"
// @Router /semesters [post]
func (c *SemesterController) CreateSemester(ctx *gin.Context) {
	var req dto.CreateSemesterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	semester, err := c.semesterService.CreateSemester(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, http.StatusCreated, semester)
}

// DeleteSemester deactivates a semester
// @Summary Delete a semester
// @Tags semesters
// @Produce json
// @Security BearerAuth
// @Param id path string true "Semester ID" format(uuid)
// @Success 200 {object} dto.APIResponse "Semester deleted successfully"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin access required"
// @Failure 404 {object} dto.ErrorResponse "Semester not found"
// @Router /semesters/{id} [delete]
func (c *SemesterController) DeleteSemester(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id", "Semester")
	if !ok {
		return
	}

	if err := c.semesterService.DeleteSemester(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Semester deleted successfully"))
}
