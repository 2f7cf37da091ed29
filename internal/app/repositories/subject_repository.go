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

var subjectColumns = []string{
	"id", "semester_id", "name", "code", "description", "image_url", "is_active", "created_at", "updated_at",
}

// SubjectRepository handles subject database operations
type SubjectRepository struct {
	db Querier
	sb squirrel.StatementBuilderType
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(db Querier) *SubjectRepository {
	return &SubjectRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanSubject(row pgx.Row) (*models.Subject, error) {
	s := &models.Subject{}
	err := row.Scan(
		&s.ID, &s.SemesterID, &s.Name, &s.Code, &s.Description, &s.ImageURL,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func mapSubjectWriteError(err error) error {
	switch {
	case dberrors.IsUniqueViolation(err):
		return apperrors.ErrSubjectAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrSemesterNotFound
	}
	return nil
}

// Create creates a new subject
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	sql, args, err := r.sb.Insert("subjects").
		Columns("semester_id", "name", "code", "description", "image_url", "is_active").
		Values(subject.SemesterID, subject.Name, subject.Code, subject.Description, subject.ImageURL, subject.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create subject SQL")
		return fmt.Errorf("failed to build create subject query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&subject.ID, &subject.CreatedAt, &subject.UpdatedAt)
	if err != nil {
		if mapped := mapSubjectWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("code", subject.Code).Msg("Error executing create subject query")
		return fmt.Errorf("error creating subject: %w", err)
	}
	return nil
}

// Upsert inserts a subject or updates the existing row with the same code
func (r *SubjectRepository) Upsert(ctx context.Context, subject *models.Subject) error {
	sql, args, err := r.sb.Insert("subjects").
		Columns("semester_id", "name", "code", "description", "image_url", "is_active").
		Values(subject.SemesterID, subject.Name, subject.Code, subject.Description, subject.ImageURL, subject.IsActive).
		Suffix(`ON CONFLICT (code) DO UPDATE SET
			semester_id = EXCLUDED.semester_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			image_url = COALESCE(EXCLUDED.image_url, subjects.image_url),
			is_active = EXCLUDED.is_active
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert subject SQL")
		return fmt.Errorf("failed to build upsert subject query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&subject.ID, &subject.CreatedAt, &subject.UpdatedAt)
	if err != nil {
		if mapped := mapSubjectWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("code", subject.Code).Msg("Error executing upsert subject query")
		return fmt.Errorf("error upserting subject: %w", err)
	}
	return nil
}

func (r *SubjectRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Subject, error) {
	sql, args, err := r.sb.Select(subjectColumns...).
		From("subjects").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get subject SQL")
		return nil, fmt.Errorf("failed to build get subject query: %w", err)
	}

	subject, err := scanSubject(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubjectNotFound
		}
		logger.Error().Err(err).Msg("Error scanning subject row")
		return nil, fmt.Errorf("error getting subject: %w", err)
	}
	return subject, nil
}

// GetByID retrieves a subject by ID, active or not
func (r *SubjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByCode retrieves a subject by its code, active or not
func (r *SubjectRepository) GetByCode(ctx context.Context, code string) (*models.Subject, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code})
}

// ListActiveBySemesters retrieves the active subjects of several semesters ordered by name
func (r *SubjectRepository) ListActiveBySemesters(ctx context.Context, semesterIDs []uuid.UUID) ([]*models.Subject, error) {
	if len(semesterIDs) == 0 {
		return []*models.Subject{}, nil
	}

	sql, args, err := r.sb.Select(subjectColumns...).
		From("subjects").
		Where(squirrel.Eq{"semester_id": semesterIDs, "is_active": true}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list subjects SQL")
		return nil, fmt.Errorf("failed to build list subjects query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list subjects query")
		return nil, fmt.Errorf("error querying subjects: %w", err)
	}
	defer rows.Close()

	subjects := []*models.Subject{}
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning subject row during list")
			return nil, fmt.Errorf("error scanning subject row: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating subject rows")
		return nil, fmt.Errorf("error iterating subject rows: %w", err)
	}
	return subjects, nil
}

// Update updates an existing subject
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	sql, args, err := r.sb.Update("subjects").
		SetMap(map[string]interface{}{
			"semester_id": subject.SemesterID,
			"name":        subject.Name,
			"code":        subject.Code,
			"description": subject.Description,
			"image_url":   subject.ImageURL,
			"is_active":   subject.IsActive,
		}).
		Where(squirrel.Eq{"id": subject.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update subject SQL")
		return fmt.Errorf("failed to build update subject query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&subject.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrSubjectNotFound
		}
		if mapped := mapSubjectWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("subjectID", subject.ID.String()).Msg("Error executing update subject query")
		return fmt.Errorf("error updating subject: %w", err)
	}
	return nil
}

// UpdateImageByCode replaces the image of the subject with the given code
func (r *SubjectRepository) UpdateImageByCode(ctx context.Context, code, imageURL string) error {
	sql, args, err := r.sb.Update("subjects").
		Set("image_url", imageURL).
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update subject image SQL")
		return fmt.Errorf("failed to build update subject image query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("code", code).Msg("Error executing update subject image query")
		return fmt.Errorf("error updating subject image: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}
	return nil
}

// SetActive flips the soft delete flag
func (r *SubjectRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return setActive(ctx, r.db, r.sb, "subjects", id, active, apperrors.ErrSubjectNotFound)
}
