package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/models/dto"
	"github.com/yigit/educareway/internal/app/repositories"
	"github.com/yigit/educareway/internal/pkg/apperrors"
	"github.com/yigit/educareway/internal/pkg/identity"
	"github.com/yigit/educareway/internal/pkg/validation"
)

// AuthService links verified external identities to local users
type AuthService interface {
	Register(ctx context.Context, ident *identity.Identity, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	UpdatePushToken(ctx context.Context, userID uuid.UUID, token *string) error
}

// AuthOptions tunes the welcome notification
type AuthOptions struct {
	WelcomeDelay        time.Duration
	NotificationTimeout time.Duration
	Runner              Runner
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo      repositories.IUserRepository
	notifications NotificationService
	opts          AuthOptions
	logger        zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	notifications NotificationService,
	opts AuthOptions,
	logger zerolog.Logger,
) AuthService {
	if opts.Runner == nil {
		opts.Runner = GoRunner
	}
	if opts.NotificationTimeout <= 0 {
		opts.NotificationTimeout = 30 * time.Second
	}
	return &authServiceImpl{
		userRepo:      userRepo,
		notifications: notifications,
		opts:          opts,
		logger:        logger,
	}
}

// normalizeStudentID trims the SAP ID and turns blanks into nil
func normalizeStudentID(studentID *string) (*string, error) {
	if studentID == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*studentID)
	if trimmed == "" {
		return nil, nil
	}
	if !validation.IsValidStudentID(trimmed) {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidationFailed, apperrors.ErrInvalidStudentID)
	}
	return &trimmed, nil
}

// Register returns the local user of ident, creating it on first call.
// The response reports whether a row was created.
func (s *authServiceImpl) Register(ctx context.Context, ident *identity.Identity, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if ident == nil || ident.UID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	externalID := strings.TrimSpace(req.ExternalAuthID)
	if externalID == "" {
		externalID = ident.UID
	}
	if externalID != ident.UID {
		return nil, apperrors.NewForbiddenError("externalAuthId does not match the authenticated user")
	}

	existing, err := s.userRepo.GetByExternalAuthID(ctx, externalID)
	if err == nil {
		return &dto.RegisterResponse{User: existing, Created: false}, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	studentID, err := normalizeStudentID(req.StudentID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	if !validation.CompiledPatterns.Email.MatchString(email) {
		return nil, apperrors.NewValidationError("email", "email must be a valid email address")
	}

	user := &models.User{
		ExternalAuthID: externalID,
		Name:           name,
		Email:          email,
		StudentID:      studentID,
		Role:           models.RoleStudent,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration of the same identity won the race
		if errors.Is(err, apperrors.ErrConflict) {
			if winner, getErr := s.userRepo.GetByExternalAuthID(ctx, externalID); getErr == nil {
				return &dto.RegisterResponse{User: winner, Created: false}, nil
			}
		}
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID.String()).Str("email", user.Email).Msg("User registered")
	s.scheduleWelcome(ctx, user.ID)

	return &dto.RegisterResponse{User: user, Created: true}, nil
}

// scheduleWelcome sends the welcome notification after the configured delay.
// It never affects the registration result.
func (s *authServiceImpl) scheduleWelcome(ctx context.Context, userID uuid.UUID) {
	if s.notifications == nil {
		return
	}
	s.opts.Runner(func() {
		bgCtx, cancel := detach(ctx, s.opts.WelcomeDelay+s.opts.NotificationTimeout)
		defer cancel()
		if !sleepCtx(bgCtx, s.opts.WelcomeDelay) {
			return
		}
		if _, err := s.notifications.SendWelcome(bgCtx, userID); err != nil {
			s.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Welcome notification failed")
		}
	})
}

// UpdatePushToken stores the device token of a user. A blank token clears it.
func (s *authServiceImpl) UpdatePushToken(ctx context.Context, userID uuid.UUID, token *string) error {
	var stored *string
	if token != nil {
		if t := strings.TrimSpace(*token); t != "" {
			stored = &t
		}
	}
	if err := s.userRepo.UpdatePushToken(ctx, userID, stored); err != nil {
		return err
	}
	s.logger.Debug().Str("userID", userID.String()).Bool("cleared", stored == nil).Msg("Push token updated")
	return nil
}
