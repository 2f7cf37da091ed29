package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/pkg/apperrors"
	"github.com/yigit/educareway/internal/pkg/dberrors"
	"github.com/yigit/educareway/internal/pkg/logger"
)

// resourceMetaColumns never includes the binary payload
var resourceMetaColumns = []string{
	"id", "subject_id", "title", "category", "media_kind", "file_name", "file_size", "mime_type",
	"external_url", "image_url", "unit_number", "description", "is_active", "created_at", "updated_at",
}

// ResourceRepository handles study resource database operations
type ResourceRepository struct {
	db Querier
	sb squirrel.StatementBuilderType
}

// NewResourceRepository creates a new ResourceRepository
func NewResourceRepository(db Querier) *ResourceRepository {
	return &ResourceRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func resourceMetaTargets(res *models.Resource) []interface{} {
	return []interface{}{
		&res.ID, &res.SubjectID, &res.Title, &res.Category, &res.MediaKind, &res.FileName, &res.FileSize,
		&res.MimeType, &res.ExternalURL, &res.ImageURL, &res.UnitNumber, &res.Description, &res.IsActive,
		&res.CreatedAt, &res.UpdatedAt,
	}
}

func scanResource(row pgx.Row) (*models.Resource, error) {
	res := &models.Resource{}
	if err := row.Scan(resourceMetaTargets(res)...); err != nil {
		return nil, err
	}
	res.HasFile = res.MediaKind != models.MediaVideoURL
	return res, nil
}

func mapResourceWriteError(err error) error {
	switch {
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrSubjectNotFound
	case dberrors.IsCheckViolation(err):
		return fmt.Errorf("%w: %s", apperrors.ErrValidationFailed, dberrors.ConstraintName(err))
	}
	return nil
}

// Create inserts a resource including its binary payload
func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	sql, args, err := r.sb.Insert("resources").
		Columns("subject_id", "title", "category", "media_kind", "file_data", "file_name", "file_size",
			"mime_type", "external_url", "image_url", "unit_number", "description", "is_active").
		Values(res.SubjectID, res.Title, res.Category, res.MediaKind, res.FileData, res.FileName, res.FileSize,
			res.MimeType, res.ExternalURL, res.ImageURL, res.UnitNumber, res.Description, res.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create resource SQL")
		return fmt.Errorf("failed to build create resource query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if mapped := mapResourceWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("subjectID", res.SubjectID.String()).Msg("Error executing create resource query")
		return fmt.Errorf("error creating resource: %w", err)
	}
	res.HasFile = res.MediaKind != models.MediaVideoURL
	return nil
}

// GetByID retrieves resource metadata by ID, active or not
func (r *ResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	sql, args, err := r.sb.Select(resourceMetaColumns...).
		From("resources").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get resource SQL")
		return nil, fmt.Errorf("failed to build get resource query: %w", err)
	}

	res, err := scanResource(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudyResourceNotFound
		}
		logger.Error().Err(err).Str("resourceID", id.String()).Msg("Error scanning resource row")
		return nil, fmt.Errorf("error getting resource: %w", err)
	}
	return res, nil
}

// GetWithFile retrieves an active resource together with its binary payload
func (r *ResourceRepository) GetWithFile(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	columns := append(append([]string{}, resourceMetaColumns...), "file_data")
	sql, args, err := r.sb.Select(columns...).
		From("resources").
		Where(squirrel.Eq{"id": id, "is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get resource file SQL")
		return nil, fmt.Errorf("failed to build get resource file query: %w", err)
	}

	res := &models.Resource{}
	targets := append(resourceMetaTargets(res), &res.FileData)
	if err := r.db.QueryRow(ctx, sql, args...).Scan(targets...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudyResourceNotFound
		}
		logger.Error().Err(err).Str("resourceID", id.String()).Msg("Error scanning resource file row")
		return nil, fmt.Errorf("error getting resource file: %w", err)
	}
	res.HasFile = len(res.FileData) > 0
	return res, nil
}

// buildListBySubjectQuery selects the active resources of a subject without the payload
func (r *ResourceRepository) buildListBySubjectQuery(subjectID uuid.UUID, category *models.ResourceCategory) (string, []interface{}, error) {
	where := squirrel.Eq{"subject_id": subjectID, "is_active": true}
	if category != nil {
		where["category"] = *category
	}
	return r.sb.Select(resourceMetaColumns...).
		From("resources").
		Where(where).
		OrderBy("unit_number ASC NULLS LAST", "created_at DESC").
		ToSql()
}

// ListBySubject retrieves the active resources of a subject, optionally filtered by category
func (r *ResourceRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID, category *models.ResourceCategory) ([]*models.Resource, error) {
	sql, args, err := r.buildListBySubjectQuery(subjectID, category)
	if err != nil {
		logger.Error().Err(err).Msg("Error building list resources SQL")
		return nil, fmt.Errorf("failed to build list resources query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list resources query")
		return nil, fmt.Errorf("error querying resources: %w", err)
	}
	defer rows.Close()

	resources := []*models.Resource{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning resource row during list")
			return nil, fmt.Errorf("error scanning resource row: %w", err)
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating resource rows")
		return nil, fmt.Errorf("error iterating resource rows: %w", err)
	}
	return resources, nil
}

// Update updates resource metadata. The payload is never rewritten.
func (r *ResourceRepository) Update(ctx context.Context, res *models.Resource) error {
	sql, args, err := r.sb.Update("resources").
		SetMap(map[string]interface{}{
			"title":        res.Title,
			"description":  res.Description,
			"image_url":    res.ImageURL,
			"unit_number":  res.UnitNumber,
			"external_url": res.ExternalURL,
			"is_active":    res.IsActive,
		}).
		Where(squirrel.Eq{"id": res.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update resource SQL")
		return fmt.Errorf("failed to build update resource query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrStudyResourceNotFound
		}
		if mapped := mapResourceWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("resourceID", res.ID.String()).Msg("Error executing update resource query")
		return fmt.Errorf("error updating resource: %w", err)
	}
	return nil
}

// SetActive flips the soft delete flag
func (r *ResourceRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return setActive(ctx, r.db, r.sb, "resources", id, active, apperrors.ErrStudyResourceNotFound)
}

func (r *ResourceRepository) exists(ctx context.Context, where squirrel.Eq) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("resources").
		Where(where).
		Limit(1).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building resource exists SQL")
		return false, fmt.Errorf("failed to build resource exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Msg("Error executing resource exists query")
		return false, fmt.Errorf("error checking resource existence: %w", err)
	}
	return exists, nil
}

// ExistsByFileName reports whether the subject already has a resource with this file name
func (r *ResourceRepository) ExistsByFileName(ctx context.Context, subjectID uuid.UUID, fileName string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"subject_id": subjectID, "file_name": fileName})
}

// ExistsByURL reports whether the subject already links to url
func (r *ResourceRepository) ExistsByURL(ctx context.Context, subjectID uuid.UUID, url string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"subject_id": subjectID, "external_url": url})
}
