package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/models/dto"
	"github.com/yigit/educareway/internal/app/repositories"
	"github.com/yigit/educareway/internal/pkg/apperrors"
	"github.com/yigit/educareway/internal/pkg/filestorage"
	"github.com/yigit/educareway/internal/pkg/helpers"
	"github.com/yigit/educareway/internal/pkg/validation"
)

// ResourceService defines the interface for study resource operations
type ResourceService interface {
	ListBySubject(ctx context.Context, subjectID uuid.UUID, category string) ([]*models.Resource, error)
	Download(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	Upload(ctx context.Context, form *dto.UploadResourceForm, file *multipart.FileHeader) (*models.Resource, error)
	CreateVideo(ctx context.Context, req *dto.CreateVideoRequest) (*models.Resource, error)
	UpdateResource(ctx context.Context, id uuid.UUID, req *dto.UpdateResourceRequest) (*models.Resource, error)
	DeleteResource(ctx context.Context, id uuid.UUID) error
}

// ResourceOptions tunes the upload notification
type ResourceOptions struct {
	NotificationTimeout time.Duration
	Runner              Runner
}

// resourceServiceImpl implements ResourceService
type resourceServiceImpl struct {
	resourceRepo  repositories.IResourceRepository
	subjectRepo   repositories.ISubjectRepository
	uploads       filestorage.UploadReader
	notifications NotificationService
	opts          ResourceOptions
	logger        zerolog.Logger
}

// NewResourceService creates a new ResourceService. notifications may be nil
// to disable upload broadcasts.
func NewResourceService(
	resourceRepo repositories.IResourceRepository,
	subjectRepo repositories.ISubjectRepository,
	uploads filestorage.UploadReader,
	notifications NotificationService,
	opts ResourceOptions,
	logger zerolog.Logger,
) ResourceService {
	if opts.Runner == nil {
		opts.Runner = GoRunner
	}
	if opts.NotificationTimeout <= 0 {
		opts.NotificationTimeout = 30 * time.Second
	}
	return &resourceServiceImpl{
		resourceRepo:  resourceRepo,
		subjectRepo:   subjectRepo,
		uploads:       uploads,
		notifications: notifications,
		opts:          opts,
		logger:        logger,
	}
}

// ParseCategory validates an optional category filter. An empty value means no filter.
func ParseCategory(raw string) (*models.ResourceCategory, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	category := models.ResourceCategory(raw)
	if !category.IsValid() {
		return nil, apperrors.NewValidationError("type", "type must be one of: notes, video, reference_book")
	}
	return &category, nil
}

// ParseUnitNumber parses the optional unit number of a multipart form
func ParseUnitNumber(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, apperrors.NewValidationError("unitNumber", "unitNumber must be a non-negative integer")
	}
	return &n, nil
}

// ListBySubject returns the active resources of a subject without payloads
func (s *resourceServiceImpl) ListBySubject(ctx context.Context, subjectID uuid.UUID, category string) ([]*models.Resource, error) {
	filter, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	resources, err := s.resourceRepo.ListBySubject(ctx, subjectID, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing resources: %w", err)
	}
	return resources, nil
}

// Download returns an active resource together with its stored file
func (s *resourceServiceImpl) Download(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	res, err := s.resourceRepo.GetWithFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(res.FileData) == 0 {
		return nil, apperrors.ErrFileNotFound
	}
	return res, nil
}

// activeSubject returns the subject if it exists and is active
func (s *resourceServiceImpl) activeSubject(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	subject, err := s.subjectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !subject.IsActive {
		return nil, apperrors.ErrSubjectNotFound
	}
	return subject, nil
}

// Upload stores a file resource or a video link. The media kind comes from
// the verified file content, never from the client.
func (s *resourceServiceImpl) Upload(ctx context.Context, form *dto.UploadResourceForm, file *multipart.FileHeader) (*models.Resource, error) {
	subjectID, err := uuid.Parse(strings.TrimSpace(form.SubjectID))
	if err != nil {
		return nil, apperrors.NewValidationError("subjectId", "subjectId must be a valid UUID")
	}
	category := models.ResourceCategory(strings.TrimSpace(form.Type))
	if !category.IsValid() {
		return nil, apperrors.NewValidationError("type", "type must be one of: notes, video, reference_book")
	}
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "title is required")
	}
	unit, err := ParseUnitNumber(form.UnitNumber)
	if err != nil {
		return nil, err
	}
	url := strings.TrimSpace(form.URL)

	res := &models.Resource{
		SubjectID:   subjectID,
		Title:       title,
		Category:    category,
		ImageURL:    helpers.NilIfEmpty(form.ImageURL),
		UnitNumber:  unit,
		Description: helpers.NilIfEmpty(form.Description),
		IsActive:    true,
	}

	if category == models.CategoryVideo {
		if file != nil {
			return nil, apperrors.NewValidationError("file", "video resources take a url, not a file")
		}
		if !validation.IsHTTPURL(url) {
			return nil, apperrors.NewValidationError("url", "url must be an absolute http or https URL")
		}
		res.MediaKind = models.MediaVideoURL
		res.ExternalURL = &url
	} else {
		if file == nil {
			return nil, apperrors.NewValidationError("file", "file is required")
		}
		if url != "" {
			return nil, apperrors.NewValidationError("url", "url is only allowed for video resources")
		}
	}

	if _, err := s.activeSubject(ctx, subjectID); err != nil {
		return nil, err
	}

	if file != nil {
		info, err := s.uploads.ReadUpload(file)
		if err != nil {
			return nil, err
		}
		applyFile(res, info)
	}

	return s.create(ctx, res)
}

// applyFile copies a verified upload onto res
func applyFile(res *models.Resource, info *filestorage.FileInfo) {
	name, mime, size := info.Filename, info.MimeType, info.FileSize
	res.MediaKind = models.MediaKind(info.Kind)
	res.FileData = info.Data
	res.FileName = &name
	res.MimeType = &mime
	res.FileSize = &size
}

// CreateVideo adds a video link to a subject
func (s *resourceServiceImpl) CreateVideo(ctx context.Context, req *dto.CreateVideoRequest) (*models.Resource, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "title is required")
	}
	url := strings.TrimSpace(req.URL)
	if !validation.IsHTTPURL(url) {
		return nil, apperrors.NewValidationError("url", "url must be an absolute http or https URL")
	}
	if req.UnitNumber != nil && *req.UnitNumber < 0 {
		return nil, apperrors.NewValidationError("unitNumber", "unitNumber must be a non-negative integer")
	}

	if _, err := s.activeSubject(ctx, req.SubjectID); err != nil {
		return nil, err
	}

	return s.create(ctx, &models.Resource{
		SubjectID:   req.SubjectID,
		Title:       title,
		Category:    models.CategoryVideo,
		MediaKind:   models.MediaVideoURL,
		ExternalURL: &url,
		ImageURL:    helpers.NilIfEmpty(req.ImageURL),
		UnitNumber:  req.UnitNumber,
		Description: helpers.NilIfEmpty(req.Description),
		IsActive:    true,
	})
}

// create persists res and schedules the broadcast. The payload is dropped
// from the returned value.
func (s *resourceServiceImpl) create(ctx context.Context, res *models.Resource) (*models.Resource, error) {
	if err := s.resourceRepo.Create(ctx, res); err != nil {
		return nil, err
	}
	res.FileData = nil

	s.logger.Info().Str("resourceID", res.ID.String()).Str("subjectID", res.SubjectID.String()).
		Str("type", string(res.Category)).Str("resourceType", string(res.MediaKind)).Msg("Resource created")

	s.notifyNewResource(ctx, res)
	return res, nil
}

// notifyNewResource broadcasts the upload without delaying or failing the request
func (s *resourceServiceImpl) notifyNewResource(ctx context.Context, res *models.Resource) {
	if s.notifications == nil {
		return
	}
	snapshot := *res
	s.opts.Runner(func() {
		bgCtx, cancel := detach(ctx, s.opts.NotificationTimeout)
		defer cancel()
		if _, err := s.notifications.NotifyNewResource(bgCtx, &snapshot); err != nil {
			s.logger.Warn().Err(err).Str("resourceID", snapshot.ID.String()).Msg("New resource notification failed")
		}
	})
}

// UpdateResource updates resource metadata. The stored file is never replaced.
func (s *resourceServiceImpl) UpdateResource(ctx context.Context, id uuid.UUID, req *dto.UpdateResourceRequest) (*models.Resource, error) {
	res, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title", "title cannot be empty")
		}
		res.Title = title
	}
	if req.Description != nil {
		res.Description = helpers.NilIfEmpty(*req.Description)
	}
	if req.ImageURL != nil {
		res.ImageURL = helpers.NilIfEmpty(*req.ImageURL)
	}
	if req.UnitNumber != nil {
		if *req.UnitNumber < 0 {
			return nil, apperrors.NewValidationError("unitNumber", "unitNumber must be a non-negative integer")
		}
		unit := *req.UnitNumber
		res.UnitNumber = &unit
	}
	if req.URL != nil {
		if res.MediaKind != models.MediaVideoURL {
			return nil, apperrors.NewValidationError("url", "url is only allowed for video resources")
		}
		url := strings.TrimSpace(*req.URL)
		if !validation.IsHTTPURL(url) {
			return nil, apperrors.NewValidationError("url", "url must be an absolute http or https URL")
		}
		res.ExternalURL = &url
	}

	if err := s.resourceRepo.Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteResource soft deletes a resource
func (s *resourceServiceImpl) DeleteResource(ctx context.Context, id uuid.UUID) error {
	if err := s.resourceRepo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.logger.Info().Str("resourceID", id.String()).Msg("Resource deactivated")
	return nil
}
