package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/repositories"
)

// UserService covers user lookups and the operator commands
type UserService interface {
	GetByExternalAuthID(ctx context.Context, externalAuthID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	MakeAdmin(ctx context.Context, email string) (*models.User, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo repositories.IUserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetByExternalAuthID resolves the local user of a verified identity
func (s *userServiceImpl) GetByExternalAuthID(ctx context.Context, externalAuthID string) (*models.User, error) {
	return s.userRepo.GetByExternalAuthID(ctx, externalAuthID)
}

// ListUsers returns every user, newest first
func (s *userServiceImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

// MakeAdmin promotes the user with the given email. Promoting an admin is a no-op.
func (s *userServiceImpl) MakeAdmin(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return user, nil
	}
	if err := s.userRepo.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, err
	}
	user.Role = models.RoleAdmin
	s.logger.Info().Str("userID", user.ID.String()).Str("email", user.Email).Msg("User promoted to admin")
	return user, nil
}
