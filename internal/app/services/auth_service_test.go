package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/models/dto"
	"github.com/yigit/educareway/internal/app/repositories/inmem"
	"github.com/yigit/educareway/internal/pkg/apperrors"
	"github.com/yigit/educareway/internal/pkg/identity"
)

func newAuthFixture(t *testing.T) (*inmem.Store, *recordingMessenger, AuthService) {
	t.Helper()
	store := inmem.New()
	messenger := newRecordingMessenger()
	notifications := NewNotificationService(store.Users, messenger, 0, testLogger())
	svc := NewAuthService(store.Users, notifications, AuthOptions{Runner: InlineRunner}, testLogger())
	return store, messenger, svc
}

func strp(s string) *string { return &s }

func TestRegisterCreatesThenReturnsExisting(t *testing.T) {
	store, _, svc := newAuthFixture(t)
	ctx := context.Background()
	ident := &identity.Identity{UID: "firebase-uid", Email: "asha@example.com"}
	req := &dto.RegisterRequest{Name: "Asha Verma", Email: "asha@example.com", StudentID: strp("12345678901")}

	first, err := svc.Register(ctx, ident, req)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "firebase-uid", first.User.ExternalAuthID)
	assert.Equal(t, models.RoleStudent, first.User.Role)
	require.NotNil(t, first.User.StudentID)
	assert.Equal(t, "12345678901", *first.User.StudentID)

	second, err := svc.Register(ctx, ident, req)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)

	users, _, _, _, _ := store.Counts()
	assert.Equal(t, 1, users)
}

func TestRegisterRejectsForeignExternalID(t *testing.T) {
	_, _, svc := newAuthFixture(t)
	ident := &identity.Identity{UID: "me"}

	_, err := svc.Register(context.Background(), ident, &dto.RegisterRequest{
		ExternalAuthID: "someone-else", Name: "X", Email: "x@example.com",
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestRegisterValidatesStudentID(t *testing.T) {
	_, _, svc := newAuthFixture(t)
	ident := &identity.Identity{UID: "me"}

	for _, id := range []string{"1234567890", "123456789012", "12345abcde1"} {
		_, err := svc.Register(context.Background(), ident, &dto.RegisterRequest{
			Name: "X", Email: "x@example.com", StudentID: strp(id),
		})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed, id)
		assert.ErrorIs(t, err, apperrors.ErrInvalidStudentID, id)
	}

	resp, err := svc.Register(context.Background(), ident, &dto.RegisterRequest{
		Name: "X", Email: "x@example.com", StudentID: strp("  "),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.User.StudentID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, _, svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &identity.Identity{UID: "a"}, &dto.RegisterRequest{Name: "A", Email: "same@example.com"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &identity.Identity{UID: "b"}, &dto.RegisterRequest{Name: "B", Email: "same@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestRegisterSendsWelcomeOnlyOnCreate(t *testing.T) {
	store, messenger, svc := newAuthFixture(t)
	ctx := context.Background()
	ident := &identity.Identity{UID: "uid"}

	resp, err := svc.Register(ctx, ident, &dto.RegisterRequest{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	// no token registered yet, so nothing is delivered
	assert.Zero(t, messenger.sentCount())

	require.NoError(t, svc.UpdatePushToken(ctx, resp.User.ID, strp("device-token")))
	user, err := store.Users.GetByID(ctx, resp.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.PushToken)
	assert.Equal(t, "device-token", *user.PushToken)

	_, err = svc.Register(ctx, ident, &dto.RegisterRequest{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Zero(t, messenger.sentCount())
}

func TestRegisterWelcomeDelivered(t *testing.T) {
	store := inmem.New()
	messenger := newRecordingMessenger()
	notifications := NewNotificationService(store.Users, messenger, 0, testLogger())

	// Deferred runner so the token can be stored before the welcome is sent
	var pending []func()
	runner := func(fn func()) { pending = append(pending, fn) }
	svc := NewAuthService(store.Users, notifications, AuthOptions{Runner: runner}, testLogger())
	ctx := context.Background()

	resp, err := svc.Register(ctx, &identity.Identity{UID: "uid"}, &dto.RegisterRequest{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, svc.UpdatePushToken(ctx, resp.User.ID, strp("device-token")))

	pending[0]()
	require.Equal(t, 1, messenger.sentCount())
	assert.Equal(t, WelcomeTitle, messenger.sent[0].Notification.Title)
	assert.Equal(t, "welcome", messenger.sent[0].Data["type"])
}

func TestUpdatePushTokenClears(t *testing.T) {
	store, _, svc := newAuthFixture(t)
	ctx := context.Background()
	user := addUserWithToken(t, store, 1, "tok")

	require.NoError(t, svc.UpdatePushToken(ctx, user.ID, strp("")))
	got, err := store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PushToken)

	require.NoError(t, svc.UpdatePushToken(ctx, user.ID, nil))
}

func TestMakeAdmin(t *testing.T) {
	store := inmem.New()
	svc := NewUserService(store.Users, testLogger())
	ctx := context.Background()
	addUserWithToken(t, store, 1, "")

	user, err := svc.MakeAdmin(ctx, "USER1@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	stored, err := store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	_, err = svc.MakeAdmin(ctx, "missing@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
