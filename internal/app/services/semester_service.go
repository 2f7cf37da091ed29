package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/models/dto"
	"github.com/yigit/educareway/internal/app/repositories"
	"github.com/yigit/educareway/internal/pkg/apperrors"
)

// SemesterService defines the interface for semester operations
type SemesterService interface {
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Semester, error)
	CreateSemester(ctx context.Context, req *dto.CreateSemesterRequest) (*models.Semester, error)
	DeleteSemester(ctx context.Context, id uuid.UUID) error
}

// semesterServiceImpl implements SemesterService
type semesterServiceImpl struct {
	courseRepo   repositories.ICourseRepository
	semesterRepo repositories.ISemesterRepository
	logger       zerolog.Logger
}

// NewSemesterService creates a new SemesterService
func NewSemesterService(
	courseRepo repositories.ICourseRepository,
	semesterRepo repositories.ISemesterRepository,
	logger zerolog.Logger,
) SemesterService {
	return &semesterServiceImpl{
		courseRepo:   courseRepo,
		semesterRepo: semesterRepo,
		logger:       logger,
	}
}

// ListByCourse returns the active semesters of an active course ordered by number
func (s *semesterServiceImpl) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Semester, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsActive {
		return nil, apperrors.ErrCourseNotFound
	}

	semesters, err := s.semesterRepo.ListActiveByCourses(ctx, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("error listing semesters: %w", err)
	}
	return semesters, nil
}

// CreateSemester adds a semester to a course. The number must lie within the
// course's semester count.
func (s *semesterServiceImpl) CreateSemester(ctx context.Context, req *dto.CreateSemesterRequest) (*models.Semester, error) {
	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	if req.SemesterNumber < 1 || req.SemesterNumber > course.TotalSemesters {
		return nil, apperrors.NewValidationError("semesterNumber",
			fmt.Sprintf("semesterNumber must be between 1 and %d", course.TotalSemesters))
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("Semester %d", req.SemesterNumber)
	}

	semester := &models.Semester{
		CourseID:       course.ID,
		SemesterNumber: req.SemesterNumber,
		Name:           name,
		IsActive:       true,
	}
	if err := s.semesterRepo.Create(ctx, semester); err != nil {
		return nil, err
	}
	s.logger.Info().Str("semesterID", semester.ID.String()).Str("course", course.Code).
		Int("number", semester.SemesterNumber).Msg("Semester created")
	return semester, nil
}

// DeleteSemester soft deletes a semester
func (s *semesterServiceImpl) DeleteSemester(ctx context.Context, id uuid.UUID) error {
	return s.semesterRepo.SetActive(ctx, id, false)
}
