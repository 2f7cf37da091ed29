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
	"github.com/yigit/educareway/internal/pkg/helpers"
	"github.com/yigit/educareway/internal/pkg/validation"
)

// CourseService defines the interface for course operations
type CourseService interface {
	ListCourses(ctx context.Context) ([]*models.Course, error)
	GetCourseByCode(ctx context.Context, code string) (*models.Course, error)
	CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, req *dto.UpdateCourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error
}

// courseServiceImpl implements CourseService
type courseServiceImpl struct {
	courseRepo   repositories.ICourseRepository
	semesterRepo repositories.ISemesterRepository
	subjectRepo  repositories.ISubjectRepository
	logger       zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(
	courseRepo repositories.ICourseRepository,
	semesterRepo repositories.ISemesterRepository,
	subjectRepo repositories.ISubjectRepository,
	logger zerolog.Logger,
) CourseService {
	return &courseServiceImpl{
		courseRepo:   courseRepo,
		semesterRepo: semesterRepo,
		subjectRepo:  subjectRepo,
		logger:       logger,
	}
}

// ListCourses returns active courses, each with its active semesters ordered by number
func (s *courseServiceImpl) ListCourses(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.courseRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	if len(courses) == 0 {
		return courses, nil
	}

	ids := make([]uuid.UUID, 0, len(courses))
	byID := make(map[uuid.UUID]*models.Course, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
		byID[c.ID] = c
		c.Semesters = []*models.Semester{}
	}

	semesters, err := s.semesterRepo.ListActiveByCourses(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error listing semesters: %w", err)
	}
	for _, sem := range semesters {
		if c, ok := byID[sem.CourseID]; ok {
			c.Semesters = append(c.Semesters, sem)
		}
	}
	return courses, nil
}

// GetCourseByCode returns an active course with its active semesters and their active subjects
func (s *courseServiceImpl) GetCourseByCode(ctx context.Context, code string) (*models.Course, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !validation.IsValidCatalogCode(code) {
		return nil, apperrors.ErrCourseNotFound
	}

	course, err := s.courseRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !course.IsActive {
		return nil, apperrors.ErrCourseNotFound
	}

	semesters, err := s.semesterRepo.ListActiveByCourses(ctx, []uuid.UUID{course.ID})
	if err != nil {
		return nil, fmt.Errorf("error listing semesters: %w", err)
	}

	semesterIDs := make([]uuid.UUID, 0, len(semesters))
	bySemester := make(map[uuid.UUID]*models.Semester, len(semesters))
	for _, sem := range semesters {
		sem.Subjects = []*models.Subject{}
		semesterIDs = append(semesterIDs, sem.ID)
		bySemester[sem.ID] = sem
	}

	subjects, err := s.subjectRepo.ListActiveBySemesters(ctx, semesterIDs)
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	for _, subj := range subjects {
		if sem, ok := bySemester[subj.SemesterID]; ok {
			sem.Subjects = append(sem.Subjects, subj)
		}
	}

	course.Semesters = semesters
	return course, nil
}

// CreateCourse creates a new course
func (s *courseServiceImpl) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*models.Course, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !validation.IsValidCatalogCode(code) {
		return nil, apperrors.NewValidationError("code", "code must contain only upper case letters, digits and dashes")
	}

	total := req.TotalSemesters
	if total == 0 {
		total = models.DefaultTotalSemesters
	}

	course := &models.Course{
		Name:           name,
		Code:           code,
		Description:    helpers.NilIfEmpty(req.Description),
		ImageURL:       helpers.NilIfEmpty(req.ImageURL),
		TotalSemesters: total,
		IsActive:       true,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	s.logger.Info().Str("courseID", course.ID.String()).Str("code", course.Code).Msg("Course created")
	return course, nil
}

// UpdateCourse applies the non-nil fields of req
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, id uuid.UUID, req *dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name", "name cannot be empty")
		}
		course.Name = name
	}
	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if !validation.IsValidCatalogCode(code) {
			return nil, apperrors.NewValidationError("code", "code must contain only upper case letters, digits and dashes")
		}
		course.Code = code
	}
	if req.Description != nil {
		course.Description = helpers.NilIfEmpty(*req.Description)
	}
	if req.ImageURL != nil {
		course.ImageURL = helpers.NilIfEmpty(*req.ImageURL)
	}
	if req.TotalSemesters != nil {
		if *req.TotalSemesters < 1 {
			return nil, apperrors.NewValidationError("totalSemesters", "totalSemesters must be at least 1")
		}
		course.TotalSemesters = *req.TotalSemesters
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse soft deletes a course
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if err := s.courseRepo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.logger.Info().Str("courseID", id.String()).Msg("Course deactivated")
	return nil
}
