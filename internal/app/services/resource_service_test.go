package services

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/models/dto"
	"github.com/yigit/educareway/internal/app/repositories/inmem"
	"github.com/yigit/educareway/internal/pkg/apperrors"
	"github.com/yigit/educareway/internal/pkg/filestorage"
)

type resourceFixture struct {
	store     *inmem.Store
	messenger *recordingMessenger
	svc       ResourceService
	catalog   catalogFixture
}

func newResourceFixture(t *testing.T) resourceFixture {
	t.Helper()
	store := inmem.New()
	messenger := newRecordingMessenger()
	notifications := NewNotificationService(store.Users, messenger, 0, testLogger())
	svc := NewResourceService(
		store.Resources, store.Subjects, filestorage.NewMemoryReader(1<<20),
		notifications, ResourceOptions{Runner: InlineRunner}, testLogger(),
	)
	return resourceFixture{store: store, messenger: messenger, svc: svc, catalog: seedCatalog(t, store)}
}

func TestUploadFileResource(t *testing.T) {
	fx := newResourceFixture(t)
	addUserWithToken(t, fx.store, 1, "tok-1")
	ctx := context.Background()

	res, err := fx.svc.Upload(ctx, &dto.UploadResourceForm{
		SubjectID:  fx.catalog.subject.ID.String(),
		Title:      "Unit 1 Arrays",
		Type:       "notes",
		UnitNumber: "1",
	}, multipartFile(t, "arrays.pdf", "application/pdf", pdfBytes))
	require.NoError(t, err)

	assert.Equal(t, models.MediaPDF, res.MediaKind)
	assert.True(t, res.HasFile)
	assert.Nil(t, res.FileData)
	require.NotNil(t, res.FileName)
	assert.Equal(t, "arrays.pdf", *res.FileName)
	require.NotNil(t, res.UnitNumber)
	assert.Equal(t, 1, *res.UnitNumber)

	require.Equal(t, 1, fx.messenger.multicastCount())
	msg := fx.messenger.multicasts[0]
	assert.Equal(t, "New notes uploaded: Unit 1 Arrays", msg.Notification.Body)
	assert.Equal(t, fx.catalog.subject.ID.String(), msg.Data["subjectId"])

	downloaded, err := fx.svc.Download(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, downloaded.FileData)
	assert.Equal(t, "application/pdf", *downloaded.MimeType)
}

func TestUploadRejections(t *testing.T) {
	fx := newResourceFixture(t)
	ctx := context.Background()
	subjectID := fx.catalog.subject.ID.String()

	tests := []struct {
		name    string
		form    dto.UploadResourceForm
		file    bool
		mime    string
		data    []byte
		wantErr error
	}{
		{"missing file", dto.UploadResourceForm{SubjectID: subjectID, Title: "x", Type: "notes"}, false, "", nil, apperrors.ErrValidationFailed},
		{"url on notes", dto.UploadResourceForm{SubjectID: subjectID, Title: "x", Type: "notes", URL: "https://a.io"}, true, "application/pdf", pdfBytes, apperrors.ErrValidationFailed},
		{"file on video", dto.UploadResourceForm{SubjectID: subjectID, Title: "x", Type: "video", URL: "https://a.io"}, true, "application/pdf", pdfBytes, apperrors.ErrValidationFailed},
		{"video without url", dto.UploadResourceForm{SubjectID: subjectID, Title: "x", Type: "video"}, false, "", nil, apperrors.ErrValidationFailed},
		{"bad category", dto.UploadResourceForm{SubjectID: subjectID, Title: "x", Type: "slides"}, true, "application/pdf", pdfBytes, apperrors.ErrValidationFailed},
		{"bad unit", dto.UploadResourceForm{SubjectID: subjectID, Title: "x", Type: "notes", UnitNumber: "one"}, true, "application/pdf", pdfBytes, apperrors.ErrValidationFailed},
		{"unknown subject", dto.UploadResourceForm{SubjectID: uuid.NewString(), Title: "x", Type: "notes"}, true, "application/pdf", pdfBytes, apperrors.ErrSubjectNotFound},
		{"disallowed mime", dto.UploadResourceForm{SubjectID: subjectID, Title: "x", Type: "notes"}, true, "text/plain", []byte("hello"), apperrors.ErrUnsupportedMedia},
		{"spoofed mime", dto.UploadResourceForm{SubjectID: subjectID, Title: "x", Type: "notes"}, true, "application/pdf", []byte("plain text pretending"), apperrors.ErrUnsupportedMedia},
		{"too large", dto.UploadResourceForm{SubjectID: subjectID, Title: "x", Type: "notes"}, true, "application/pdf", append(append([]byte{}, pdfBytes...), make([]byte, 2<<20)...), apperrors.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := tt.form
			file := multipartOrNil(t, tt.file, tt.mime, tt.data)
			_, err := fx.svc.Upload(ctx, &form, file)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, _, _, _, resources := fx.store.Counts()
	assert.Zero(t, resources)
	assert.Zero(t, fx.messenger.multicastCount())
}

func TestCreateVideoAndUpdate(t *testing.T) {
	fx := newResourceFixture(t)
	ctx := context.Background()

	video, err := fx.svc.CreateVideo(ctx, &dto.CreateVideoRequest{
		SubjectID: fx.catalog.subject.ID, Title: "Trees", URL: "https://www.youtube.com/watch?v=abc",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryVideo, video.Category)
	assert.Equal(t, models.MediaVideoURL, video.MediaKind)
	assert.False(t, video.HasFile)

	_, err = fx.svc.Download(ctx, video.ID)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)

	_, err = fx.svc.CreateVideo(ctx, &dto.CreateVideoRequest{SubjectID: fx.catalog.subject.ID, Title: "Bad", URL: "ftp://x"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	title := "Binary Trees"
	unit := 3
	updated, err := fx.svc.UpdateResource(ctx, video.ID, &dto.UpdateResourceRequest{Title: &title, UnitNumber: &unit})
	require.NoError(t, err)
	assert.Equal(t, "Binary Trees", updated.Title)
	assert.Equal(t, 3, *updated.UnitNumber)

	_, err = fx.svc.UpdateResource(ctx, uuid.New(), &dto.UpdateResourceRequest{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrStudyResourceNotFound)
}

func TestListBySubjectFiltersAndHidesDeleted(t *testing.T) {
	fx := newResourceFixture(t)
	ctx := context.Background()
	subjectID := fx.catalog.subject.ID

	notes, err := fx.svc.Upload(ctx, &dto.UploadResourceForm{SubjectID: subjectID.String(), Title: "Notes", Type: "notes"},
		multipartFile(t, "n.pdf", "application/pdf", pdfBytes))
	require.NoError(t, err)
	_, err = fx.svc.CreateVideo(ctx, &dto.CreateVideoRequest{SubjectID: subjectID, Title: "Video", URL: "https://youtu.be/x"})
	require.NoError(t, err)

	all, err := fx.svc.ListBySubject(ctx, subjectID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	videos, err := fx.svc.ListBySubject(ctx, subjectID, "video")
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "Video", videos[0].Title)

	_, err = fx.svc.ListBySubject(ctx, subjectID, "slides")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	require.NoError(t, fx.svc.DeleteResource(ctx, notes.ID))
	all, err = fx.svc.ListBySubject(ctx, subjectID, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = fx.svc.Download(ctx, notes.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudyResourceNotFound)
	assert.ErrorIs(t, fx.svc.DeleteResource(ctx, uuid.New()), apperrors.ErrStudyResourceNotFound)
}

func TestNotificationFailureDoesNotFailUpload(t *testing.T) {
	fx := newResourceFixture(t)
	fx.messenger.failAfter = 0
	addUserWithToken(t, fx.store, 1, "tok")

	res, err := fx.svc.CreateVideo(context.Background(), &dto.CreateVideoRequest{
		SubjectID: fx.catalog.subject.ID, Title: "Video", URL: "https://youtu.be/x",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.ID)
}

func multipartOrNil(t *testing.T, want bool, mime string, data []byte) *multipart.FileHeader {
	if !want {
		return nil
	}
	return multipartFile(t, "upload.pdf", mime, data)
}
