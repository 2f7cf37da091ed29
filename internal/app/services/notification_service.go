package services

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/repositories"
	"github.com/yigit/educareway/internal/pkg/apperrors"
	"github.com/yigit/educareway/internal/pkg/push"
)

// Notification payloads
const (
	NewResourceTitle = "New Resource Available!"
	WelcomeTitle     = "Welcome to EduCareWay! 🎓"
	WelcomeBody      = "Start exploring your courses and learning materials."

	DataTypeNewResource = "new_resource"
	DataTypeWelcome     = "welcome"
)

// NotificationService fans push notifications out to registered devices.
// Users without a token are skipped silently.
type NotificationService interface {
	SendToUser(ctx context.Context, userID uuid.UUID, n push.Notification) (string, error)
	SendToUsers(ctx context.Context, userIDs []uuid.UUID, n push.Notification) ([]*messaging.BatchResponse, error)
	SendToAll(ctx context.Context, n push.Notification) ([]*messaging.BatchResponse, error)
	NotifyNewResource(ctx context.Context, resource *models.Resource) ([]*messaging.BatchResponse, error)
	SendWelcome(ctx context.Context, userID uuid.UUID) (string, error)
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	userRepo  repositories.IUserRepository
	messenger push.Messenger
	batchSize int
	logger    zerolog.Logger
}

// NewNotificationService creates a new NotificationService. A batchSize outside
// 1..push.MaxBatchSize falls back to the provider limit.
func NewNotificationService(
	userRepo repositories.IUserRepository,
	messenger push.Messenger,
	batchSize int,
	logger zerolog.Logger,
) NotificationService {
	if batchSize <= 0 || batchSize > push.MaxBatchSize {
		batchSize = push.MaxBatchSize
	}
	return &notificationServiceImpl{
		userRepo:  userRepo,
		messenger: messenger,
		batchSize: batchSize,
		logger:    logger,
	}
}

// NewResourceNotification builds the broadcast sent after an upload
func NewResourceNotification(resource *models.Resource) push.Notification {
	return push.Notification{
		Title: NewResourceTitle,
		Body:  fmt.Sprintf("New %s uploaded: %s", resource.Category, resource.Title),
		Data: map[string]string{
			"type":         DataTypeNewResource,
			"subjectId":    resource.SubjectID.String(),
			"resourceType": string(resource.Category),
		},
	}
}

// WelcomeNotification builds the greeting sent to newly registered users
func WelcomeNotification() push.Notification {
	return push.Notification{
		Title: WelcomeTitle,
		Body:  WelcomeBody,
		Data:  map[string]string{"type": DataTypeWelcome},
	}
}

// SendToUser sends n to a single user. A missing user or token yields ("", nil).
func (s *notificationServiceImpl) SendToUser(ctx context.Context, userID uuid.UUID, n push.Notification) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Str("userID", userID.String()).Msg("Notification target user not found")
			return "", nil
		}
		return "", fmt.Errorf("error loading notification target: %w", err)
	}
	if !user.HasPushToken() {
		s.logger.Debug().Str("userID", userID.String()).Msg("User has no push token")
		return "", nil
	}

	id, err := s.messenger.Send(ctx, n.Message(*user.PushToken))
	if err != nil {
		return "", fmt.Errorf("%w: sending notification: %v", apperrors.ErrExternalService, err)
	}
	s.logger.Info().Str("userID", userID.String()).Str("messageId", id).Msg("Notification sent")
	return id, nil
}

// SendToUsers sends n to every listed user that has a token
func (s *notificationServiceImpl) SendToUsers(ctx context.Context, userIDs []uuid.UUID, n push.Notification) ([]*messaging.BatchResponse, error) {
	tokens, err := s.userRepo.GetPushTokens(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("error loading push tokens: %w", err)
	}
	return s.multicast(ctx, tokens, n)
}

// SendToAll sends n to every user with a token, one batch at a time
func (s *notificationServiceImpl) SendToAll(ctx context.Context, n push.Notification) ([]*messaging.BatchResponse, error) {
	tokens, err := s.userRepo.GetAllPushTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading push tokens: %w", err)
	}
	return s.multicast(ctx, tokens, n)
}

// multicast sends the batches sequentially. On failure the responses of the
// batches already sent are returned with the error.
func (s *notificationServiceImpl) multicast(ctx context.Context, tokens []string, n push.Notification) ([]*messaging.BatchResponse, error) {
	if len(tokens) == 0 {
		s.logger.Debug().Msg("No push tokens registered, nothing to send")
		return nil, nil
	}

	batches := push.Chunk(tokens, s.batchSize)
	responses := make([]*messaging.BatchResponse, 0, len(batches))
	for i, batch := range batches {
		resp, err := s.messenger.SendEachForMulticast(ctx, n.Multicast(batch))
		if err != nil {
			s.logger.Error().Err(err).Int("batch", i).Int("batches", len(batches)).Msg("Multicast batch failed")
			return responses, fmt.Errorf("%w: multicast batch %d: %v", apperrors.ErrExternalService, i, err)
		}
		responses = append(responses, resp)
	}

	success, failure := 0, 0
	for _, r := range responses {
		success += r.SuccessCount
		failure += r.FailureCount
	}
	s.logger.Info().Int("tokens", len(tokens)).Int("batches", len(batches)).
		Int("success", success).Int("failure", failure).Msg("Multicast notification sent")
	return responses, nil
}

// NotifyNewResource broadcasts the arrival of a resource to every user
func (s *notificationServiceImpl) NotifyNewResource(ctx context.Context, resource *models.Resource) ([]*messaging.BatchResponse, error) {
	return s.SendToAll(ctx, NewResourceNotification(resource))
}

// SendWelcome greets a new user. Failures are logged and swallowed.
func (s *notificationServiceImpl) SendWelcome(ctx context.Context, userID uuid.UUID) (string, error) {
	id, err := s.SendToUser(ctx, userID, WelcomeNotification())
	if err != nil {
		s.logger.Warn().Err(err).Str("userID", userID.String()).Msg("Welcome notification failed")
		return "", nil
	}
	return id, nil
}
