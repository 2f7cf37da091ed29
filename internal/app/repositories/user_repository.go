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

var userColumns = []string{
	"id", "external_auth_id", "name", "email", "student_id", "role", "push_token", "created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db Querier
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.ExternalAuthID, &user.Name, &user.Email, &user.StudentID,
		&user.Role, &user.PushToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// mapUserConstraintError converts unique violations into domain errors
func mapUserConstraintError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "users_email_key"):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, "users_student_id_key"):
		return apperrors.ErrStudentIDAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, "users_external_auth_id_key"):
		return apperrors.NewConflictError("user already registered")
	case dberrors.IsCheckViolation(err):
		return fmt.Errorf("%w: %s", apperrors.ErrValidationFailed, dberrors.ConstraintName(err))
	}
	return nil
}

// Create inserts a user and fills in the generated id and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleStudent
	}

	sql, args, err := r.sb.Insert("users").
		Columns("external_auth_id", "name", "email", "student_id", "role", "push_token").
		Values(user.ExternalAuthID, user.Name, user.Email, user.StudentID, user.Role, user.PushToken).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if mapped := mapUserConstraintError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer, logField, logValue string) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user SQL")
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str(logField, logValue).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "userID", id.String())
}

// GetByExternalAuthID retrieves a user by the identity provider uid
func (r *UserRepository) GetByExternalAuthID(ctx context.Context, externalAuthID string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"external_auth_id": externalAuthID}, "externalAuthID", externalAuthID)
}

// GetByEmail retrieves a user by email, case insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(email) = LOWER(?)", email), "email", email)
}

// List returns every user, newest first
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list users SQL")
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning user row during list")
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating user rows")
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (r *UserRepository) updateColumn(ctx context.Context, id uuid.UUID, column string, value interface{}) error {
	sql, args, err := r.sb.Update("users").
		Set(column, value).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Str("column", column).Msg("Error building update user SQL")
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if mapped := mapUserConstraintError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("userID", id.String()).Str("column", column).Msg("Error executing update user query")
		return fmt.Errorf("error updating user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdatePushToken stores the device token; nil clears it
func (r *UserRepository) UpdatePushToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.updateColumn(ctx, id, "push_token", token)
}

// UpdateRole changes a user's role
func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.RoleType) error {
	return r.updateColumn(ctx, id, "role", role)
}

// buildPushTokenQuery selects the non-empty tokens of the given users, or of all users when ids is nil
func (r *UserRepository) buildPushTokenQuery(ids []uuid.UUID) (string, []interface{}, error) {
	q := r.sb.Select("push_token").
		From("users").
		Where(squirrel.And{
			squirrel.NotEq{"push_token": nil},
			squirrel.NotEq{"push_token": ""},
		}).
		OrderBy("created_at ASC")
	if ids != nil {
		q = q.Where(squirrel.Eq{"id": ids})
	}
	return q.ToSql()
}

func (r *UserRepository) queryTokens(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	sql, args, err := r.buildPushTokenQuery(ids)
	if err != nil {
		logger.Error().Err(err).Msg("Error building push token SQL")
		return nil, fmt.Errorf("failed to build push token query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing push token query")
		return nil, fmt.Errorf("error querying push tokens: %w", err)
	}
	tokens, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		logger.Error().Err(err).Msg("Error collecting push tokens")
		return nil, fmt.Errorf("error collecting push tokens: %w", err)
	}
	return tokens, nil
}

// GetPushTokens returns the registered tokens of the given users
func (r *UserRepository) GetPushTokens(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryTokens(ctx, ids)
}

// GetAllPushTokens returns every registered token
func (r *UserRepository) GetAllPushTokens(ctx context.Context) ([]string, error) {
	return r.queryTokens(ctx, nil)
}
