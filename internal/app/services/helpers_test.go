package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/repositories/inmem"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	errFCM   = errors.New("fcm unavailable")
)

// recordingMessenger captures every push request
type recordingMessenger struct {
	mu         sync.Mutex
	sent       []*messaging.Message
	multicasts []*messaging.MulticastMessage
	failAfter  int // multicast calls allowed before failing, <0 never fails
	sendErr    error
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{failAfter: -1}
}

func (m *recordingMessenger) Send(_ context.Context, msg *messaging.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sent = append(m.sent, msg)
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

func (m *recordingMessenger) SendEachForMulticast(_ context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter >= 0 && len(m.multicasts) >= m.failAfter {
		return nil, errFCM
	}
	m.multicasts = append(m.multicasts, msg)
	return &messaging.BatchResponse{SuccessCount: len(msg.Tokens)}, nil
}

func (m *recordingMessenger) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *recordingMessenger) multicastCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.multicasts)
}

type catalogFixture struct {
	course   *models.Course
	semester *models.Semester
	subject  *models.Subject
}

func seedCatalog(t *testing.T, store *inmem.Store) catalogFixture {
	t.Helper()
	ctx := context.Background()

	course := &models.Course{Name: "Master of Computer Applications", Code: "MCA", TotalSemesters: 3, IsActive: true}
	require.NoError(t, store.Courses.Create(ctx, course))
	semester := &models.Semester{CourseID: course.ID, SemesterNumber: 1, Name: "Semester 1", IsActive: true}
	require.NoError(t, store.Semesters.Create(ctx, semester))
	subject := &models.Subject{SemesterID: semester.ID, Name: "Data Structures and Algorithms", Code: "DSA", IsActive: true}
	require.NoError(t, store.Subjects.Create(ctx, subject))

	return catalogFixture{course: course, semester: semester, subject: subject}
}

func addUserWithToken(t *testing.T, store *inmem.Store, n int, token string) *models.User {
	t.Helper()
	user := &models.User{
		ExternalAuthID: fmt.Sprintf("uid-%d", n),
		Name:           fmt.Sprintf("User %d", n),
		Email:          fmt.Sprintf("user%d@example.com", n),
	}
	if token != "" {
		user.PushToken = &token
	}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

func multipartFile(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["file"][0]
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
