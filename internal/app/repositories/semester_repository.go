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

var semesterColumns = []string{
	"id", "course_id", "semester_number", "name", "is_active", "created_at", "updated_at",
}

// SemesterRepository handles semester database operations
type SemesterRepository struct {
	db Querier
	sb squirrel.StatementBuilderType
}

// NewSemesterRepository creates a new SemesterRepository
func NewSemesterRepository(db Querier) *SemesterRepository {
	return &SemesterRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanSemester(row pgx.Row) (*models.Semester, error) {
	s := &models.Semester{}
	if err := row.Scan(&s.ID, &s.CourseID, &s.SemesterNumber, &s.Name, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func mapSemesterWriteError(err error) error {
	switch {
	case dberrors.IsUniqueViolation(err):
		return apperrors.ErrSemesterAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// Create creates a new semester
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	sql, args, err := r.sb.Insert("semesters").
		Columns("course_id", "semester_number", "name", "is_active").
		Values(semester.CourseID, semester.SemesterNumber, semester.Name, semester.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create semester SQL")
		return fmt.Errorf("failed to build create semester query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&semester.ID, &semester.CreatedAt, &semester.UpdatedAt)
	if err != nil {
		if mapped := mapSemesterWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("courseID", semester.CourseID.String()).Msg("Error executing create semester query")
		return fmt.Errorf("error creating semester: %w", err)
	}
	return nil
}

// Upsert inserts a semester or updates the one with the same (course, number)
func (r *SemesterRepository) Upsert(ctx context.Context, semester *models.Semester) error {
	sql, args, err := r.sb.Insert("semesters").
		Columns("course_id", "semester_number", "name", "is_active").
		Values(semester.CourseID, semester.SemesterNumber, semester.Name, semester.IsActive).
		Suffix(`ON CONFLICT (course_id, semester_number) DO UPDATE SET
			name = EXCLUDED.name,
			is_active = EXCLUDED.is_active
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert semester SQL")
		return fmt.Errorf("failed to build upsert semester query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&semester.ID, &semester.CreatedAt, &semester.UpdatedAt)
	if err != nil {
		if mapped := mapSemesterWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("courseID", semester.CourseID.String()).Msg("Error executing upsert semester query")
		return fmt.Errorf("error upserting semester: %w", err)
	}
	return nil
}

// GetByID retrieves a semester by ID, active or not
func (r *SemesterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Semester, error) {
	sql, args, err := r.sb.Select(semesterColumns...).
		From("semesters").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get semester SQL")
		return nil, fmt.Errorf("failed to build get semester query: %w", err)
	}

	semester, err := scanSemester(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSemesterNotFound
		}
		logger.Error().Err(err).Str("semesterID", id.String()).Msg("Error scanning semester row")
		return nil, fmt.Errorf("error getting semester: %w", err)
	}
	return semester, nil
}

// ListActiveByCourses retrieves the active semesters of several courses ordered by number
func (r *SemesterRepository) ListActiveByCourses(ctx context.Context, courseIDs []uuid.UUID) ([]*models.Semester, error) {
	if len(courseIDs) == 0 {
		return []*models.Semester{}, nil
	}

	sql, args, err := r.sb.Select(semesterColumns...).
		From("semesters").
		Where(squirrel.Eq{"course_id": courseIDs, "is_active": true}).
		OrderBy("semester_number ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list semesters SQL")
		return nil, fmt.Errorf("failed to build list semesters query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list semesters query")
		return nil, fmt.Errorf("error querying semesters: %w", err)
	}
	defer rows.Close()

	semesters := []*models.Semester{}
	for rows.Next() {
		s, err := scanSemester(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning semester row during list")
			return nil, fmt.Errorf("error scanning semester row: %w", err)
		}
		semesters = append(semesters, s)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating semester rows")
		return nil, fmt.Errorf("error iterating semester rows: %w", err)
	}
	return semesters, nil
}

// SetActive flips the soft delete flag
func (r *SemesterRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return setActive(ctx, r.db, r.sb, "semesters", id, active, apperrors.ErrSemesterNotFound)
}
