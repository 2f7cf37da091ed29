package inmem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/repositories"
	"github.com/yigit/educareway/internal/pkg/apperrors"
)

var (
	_ repositories.IUserRepository     = (*UserRepository)(nil)
	_ repositories.ICourseRepository   = (*CourseRepository)(nil)
	_ repositories.ISemesterRepository = (*SemesterRepository)(nil)
	_ repositories.ISubjectRepository  = (*SubjectRepository)(nil)
	_ repositories.IResourceRepository = (*ResourceRepository)(nil)
)

func seedSubject(t *testing.T, s *Store) *models.Subject {
	t.Helper()
	ctx := context.Background()
	course := &models.Course{Name: "Master of Computer Applications", Code: "MCA", TotalSemesters: 3, IsActive: true}
	require.NoError(t, s.Courses.Create(ctx, course))
	sem := &models.Semester{CourseID: course.ID, SemesterNumber: 1, Name: "Semester 1", IsActive: true}
	require.NoError(t, s.Semesters.Create(ctx, sem))
	subject := &models.Subject{SemesterID: sem.ID, Name: "Data Structures", Code: "DSA", IsActive: true}
	require.NoError(t, s.Subjects.Create(ctx, subject))
	return subject
}

func TestResourceOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()
	subject := seedSubject(t, s)

	unit := func(n int) *int { return &n }
	add := func(title string, u *int) {
		res := &models.Resource{
			SubjectID: subject.ID, Title: title, Category: models.CategoryNotes,
			MediaKind: models.MediaPDF, FileData: []byte("%PDF"), UnitNumber: u, IsActive: true,
		}
		require.NoError(t, s.Resources.Create(ctx, res))
	}
	add("no unit old", nil)
	add("unit 2", unit(2))
	add("unit 1 old", unit(1))
	add("no unit new", nil)
	add("unit 1 new", unit(1))

	list, err := s.Resources.ListBySubject(ctx, subject.ID, nil)
	require.NoError(t, err)

	titles := make([]string, 0, len(list))
	for _, r := range list {
		titles = append(titles, r.Title)
		assert.Nil(t, r.FileData)
		assert.True(t, r.HasFile)
	}
	assert.Equal(t, []string{"unit 1 new", "unit 1 old", "unit 2", "no unit new", "no unit old"}, titles)
}

func TestResourcePayloadCheck(t *testing.T) {
	s := New()
	ctx := context.Background()
	subject := seedSubject(t, s)
	url := "https://youtu.be/x"

	err := s.Resources.Create(ctx, &models.Resource{
		SubjectID: subject.ID, Title: "bad", Category: models.CategoryVideo,
		MediaKind: models.MediaVideoURL, ExternalURL: &url, FileData: []byte("x"),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	err = s.Resources.Create(ctx, &models.Resource{
		SubjectID: subject.ID, Title: "bad", Category: models.CategoryNotes, MediaKind: models.MediaPDF,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUniqueConstraints(t *testing.T) {
	s := New()
	ctx := context.Background()
	sid := "12345678901"

	require.NoError(t, s.Users.Create(ctx, &models.User{ExternalAuthID: "a", Name: "A", Email: "a@x.io", StudentID: &sid}))
	assert.ErrorIs(t, s.Users.Create(ctx, &models.User{ExternalAuthID: "b", Name: "B", Email: "A@X.io"}), apperrors.ErrEmailAlreadyExists)
	assert.ErrorIs(t, s.Users.Create(ctx, &models.User{ExternalAuthID: "c", Name: "C", Email: "c@x.io", StudentID: &sid}), apperrors.ErrStudentIDAlreadyExists)

	subject := seedSubject(t, s)
	assert.ErrorIs(t, s.Subjects.Create(ctx, &models.Subject{SemesterID: subject.SemesterID, Name: "Other", Code: "DSA"}), apperrors.ErrSubjectAlreadyExists)
}
