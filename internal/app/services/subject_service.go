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

// SubjectService defines the interface for subject operations
type SubjectService interface {
	ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]*models.Subject, error)
	GetSubject(ctx context.Context, id uuid.UUID) (*models.Subject, error)
	CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*models.Subject, error)
	UpdateSubject(ctx context.Context, id uuid.UUID, req *dto.UpdateSubjectRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id uuid.UUID) error
	SetImageByCode(ctx context.Context, code, imageURL string) error
}

// subjectServiceImpl implements SubjectService
type subjectServiceImpl struct {
	courseRepo   repositories.ICourseRepository
	semesterRepo repositories.ISemesterRepository
	subjectRepo  repositories.ISubjectRepository
	resourceRepo repositories.IResourceRepository
	logger       zerolog.Logger
}

// NewSubjectService creates a new SubjectService
func NewSubjectService(
	courseRepo repositories.ICourseRepository,
	semesterRepo repositories.ISemesterRepository,
	subjectRepo repositories.ISubjectRepository,
	resourceRepo repositories.IResourceRepository,
	logger zerolog.Logger,
) SubjectService {
	return &subjectServiceImpl{
		courseRepo:   courseRepo,
		semesterRepo: semesterRepo,
		subjectRepo:  subjectRepo,
		resourceRepo: resourceRepo,
		logger:       logger,
	}
}

// loadSemester returns the semester with its course attached
func (s *subjectServiceImpl) loadSemester(ctx context.Context, semesterID uuid.UUID) (*models.Semester, error) {
	semester, err := s.semesterRepo.GetByID(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, semester.CourseID)
	if err != nil {
		return nil, fmt.Errorf("error loading course of semester: %w", err)
	}
	semester.Course = course
	return semester, nil
}

// ListBySemester returns the active subjects of a semester, each with semester and course
func (s *subjectServiceImpl) ListBySemester(ctx context.Context, semesterID uuid.UUID) ([]*models.Subject, error) {
	semester, err := s.loadSemester(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	if !semester.IsActive {
		return nil, apperrors.ErrSemesterNotFound
	}

	subjects, err := s.subjectRepo.ListActiveBySemesters(ctx, []uuid.UUID{semesterID})
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	for _, subj := range subjects {
		subj.Semester = semester
	}
	return subjects, nil
}

// GetSubject returns an active subject with its active resources, semester and course.
// Resource payloads are not loaded.
func (s *subjectServiceImpl) GetSubject(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	subject, err := s.subjectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !subject.IsActive {
		return nil, apperrors.ErrSubjectNotFound
	}

	semester, err := s.loadSemester(ctx, subject.SemesterID)
	if err != nil {
		return nil, err
	}
	subject.Semester = semester

	resources, err := s.resourceRepo.ListBySubject(ctx, subject.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("error listing resources: %w", err)
	}
	subject.Resources = resources
	return subject, nil
}

// CreateSubject creates a subject in an existing semester
func (s *subjectServiceImpl) CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*models.Subject, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !validation.IsValidCatalogCode(code) {
		return nil, apperrors.NewValidationError("code", "code must contain only upper case letters, digits and dashes")
	}

	if _, err := s.semesterRepo.GetByID(ctx, req.SemesterID); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		SemesterID:  req.SemesterID,
		Name:        name,
		Code:        code,
		Description: helpers.NilIfEmpty(req.Description),
		ImageURL:    helpers.NilIfEmpty(req.ImageURL),
		IsActive:    true,
	}
	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		return nil, err
	}
	s.logger.Info().Str("subjectID", subject.ID.String()).Str("code", subject.Code).Msg("Subject created")
	return subject, nil
}

// UpdateSubject applies the non-nil fields of req
func (s *subjectServiceImpl) UpdateSubject(ctx context.Context, id uuid.UUID, req *dto.UpdateSubjectRequest) (*models.Subject, error) {
	subject, err := s.subjectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SemesterID != nil && *req.SemesterID != subject.SemesterID {
		if _, err := s.semesterRepo.GetByID(ctx, *req.SemesterID); err != nil {
			return nil, err
		}
		subject.SemesterID = *req.SemesterID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name", "name cannot be empty")
		}
		subject.Name = name
	}
	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if !validation.IsValidCatalogCode(code) {
			return nil, apperrors.NewValidationError("code", "code must contain only upper case letters, digits and dashes")
		}
		subject.Code = code
	}
	if req.Description != nil {
		subject.Description = helpers.NilIfEmpty(*req.Description)
	}
	if req.ImageURL != nil {
		subject.ImageURL = helpers.NilIfEmpty(*req.ImageURL)
	}
	if req.IsActive != nil {
		subject.IsActive = *req.IsActive
	}

	if err := s.subjectRepo.Update(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// DeleteSubject soft deletes a subject
func (s *subjectServiceImpl) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	return s.subjectRepo.SetActive(ctx, id, false)
}

// SetImageByCode replaces a subject image, used to repair catalog image paths
func (s *subjectServiceImpl) SetImageByCode(ctx context.Context, code, imageURL string) error {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return apperrors.NewValidationError("imageUrl", "imageUrl is required")
	}
	return s.subjectRepo.UpdateImageByCode(ctx, strings.ToUpper(strings.TrimSpace(code)), imageURL)
}
