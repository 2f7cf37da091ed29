package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/repositories/inmem"
	"github.com/yigit/educareway/internal/config"
	"github.com/yigit/educareway/internal/pkg/identity"
	"github.com/yigit/educareway/internal/pkg/push"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

type testApp struct {
	router   *gin.Engine
	store    *inmem.Store
	verifier *identity.DevVerifier
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.MaxUploadSize = 64 << 10
	cfg.Server.CORSOrigins = "http://localhost:5173"
	cfg.Notifications.Enabled = false
	cfg.Notifications.WelcomeDelay = "0s"
	cfg.Notifications.Timeout = "1s"

	verifier := identity.NewDevVerifier(identity.DevConfig{SecretKey: "router-test-secret", TokenIssuer: "educareway.test"})
	store := inmem.New()
	stores := Stores{
		Users:     store.Users,
		Courses:   store.Courses,
		Semesters: store.Semesters,
		Subjects:  store.Subjects,
		Resources: store.Resources,
	}
	providers := &Providers{Verifier: verifier, Messenger: push.NewNoopMessenger(zerolog.Nop())}

	deps := BuildDependencies(cfg, stores, providers, nil, zerolog.Nop())
	router, err := SetupRouter(cfg, deps, zerolog.Nop())
	require.NoError(t, err)

	return &testApp{router: router, store: store, verifier: verifier}
}

func (a *testApp) token(t *testing.T, uid string) string {
	t.Helper()
	token, err := a.verifier.Issue(uid, uid+"@example.com", uid)
	require.NoError(t, err)
	return token
}

func (a *testApp) addUser(t *testing.T, uid string, role models.RoleType) *models.User {
	t.Helper()
	user := &models.User{ExternalAuthID: uid, Name: uid, Email: uid + "@example.com", Role: role}
	require.NoError(t, a.store.Users.Create(context.Background(), user))
	return user
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) upload(t *testing.T, token string, fields map[string]string, fileName, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resources/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	env := decode(t, rec)
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// seedSubject creates MCA / semester 1 / DSA through the admin API
func (a *testApp) seedSubject(t *testing.T, adminToken string) (course models.Course, semester models.Semester, subject models.Subject) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/courses", adminToken, map[string]interface{}{
		"name": "Master of Computer Applications", "code": "MCA", "totalSemesters": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &course)

	rec = a.do(t, http.MethodPost, "/api/semesters", adminToken, map[string]interface{}{
		"courseId": course.ID, "semesterNumber": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &semester)

	rec = a.do(t, http.MethodPost, "/api/subjects", adminToken, map[string]interface{}{
		"semesterId": semester.ID, "name": "Data Structures and Algorithms", "code": "DSA",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &subject)
	return course, semester, subject
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	decodeData(t, rec, &health)
	assert.Equal(t, "OK", health["status"])
}

func TestRegisterFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, "uid-1")
	body := map[string]interface{}{"name": "Asha Verma", "email": "asha@example.com", "studentId": "12345678901"}

	rec := app.do(t, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/auth/register", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		User    models.User `json:"user"`
		Created bool        `json:"created"`
	}
	decodeData(t, rec, &created)
	assert.True(t, created.Created)
	assert.Equal(t, "uid-1", created.User.ExternalAuthID)
	assert.Equal(t, models.RoleStudent, created.User.Role)

	rec = app.do(t, http.MethodPost, "/api/auth/register", token, body)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &created)
	assert.False(t, created.Created)

	rec = app.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	decodeData(t, rec, &me)
	assert.Equal(t, "asha@example.com", me.Email)
}

func TestRegisterRejections(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, "uid-2")

	rec := app.do(t, http.MethodPost, "/api/auth/register", token, map[string]interface{}{
		"name": "Ravi", "email": "ravi@example.com", "studentId": "123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/auth/register", token, map[string]interface{}{
		"externalAuthId": "someone-else", "name": "Ravi", "email": "ravi@example.com",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	app.addUser(t, "uid-3", models.RoleStudent)
	rec = app.do(t, http.MethodPost, "/api/auth/register", token, map[string]interface{}{
		"name": "Ravi", "email": "uid-3@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUnregisteredUser(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/auth/me", app.token(t, "ghost"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec).Error.Message)

	rec = app.do(t, http.MethodGet, "/api/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPushTokenUpdate(t *testing.T) {
	app := newTestApp(t)
	user := app.addUser(t, "uid-push", models.RoleStudent)
	token := app.token(t, "uid-push")

	rec := app.do(t, http.MethodPut, "/api/auth/fcm-token", token, map[string]string{"fcmToken": "device-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tokens, err := app.store.Users.GetPushTokens(context.Background(), []uuid.UUID{user.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"device-1"}, tokens)

	rec = app.do(t, http.MethodPut, "/api/auth/fcm-token", token, map[string]string{"fcmToken": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	tokens, err = app.store.Users.GetPushTokens(context.Background(), []uuid.UUID{user.ID})
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestAdminGate(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "student", models.RoleStudent)
	body := map[string]interface{}{"name": "Bachelor of Technology", "code": "BTECH"}

	rec := app.do(t, http.MethodPost, "/api/courses", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/courses", app.token(t, "student"), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/courses", app.token(t, "nobody"), body)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodDelete, "/api/resources/"+uuid.NewString(), app.token(t, "student"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCatalogBrowsing(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "admin", models.RoleAdmin)
	adminToken := app.token(t, "admin")
	course, semester, subject := app.seedSubject(t, adminToken)

	rec := app.do(t, http.MethodPost, "/api/courses", adminToken, map[string]interface{}{"name": "Another", "code": "MCA"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/courses", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var courses []models.Course
	decodeData(t, rec, &courses)
	require.Len(t, courses, 1)
	require.Len(t, courses[0].Semesters, 1)
	assert.Equal(t, semester.ID, courses[0].Semesters[0].ID)

	rec = app.do(t, http.MethodGet, "/api/courses/mca", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var byCode models.Course
	decodeData(t, rec, &byCode)
	assert.Equal(t, course.ID, byCode.ID)
	require.Len(t, byCode.Semesters, 1)
	require.Len(t, byCode.Semesters[0].Subjects, 1)
	assert.Equal(t, "DSA", byCode.Semesters[0].Subjects[0].Code)

	rec = app.do(t, http.MethodGet, "/api/courses/NOPE", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/semesters/course/"+course.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/subjects/semester/"+semester.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var subjects []models.Subject
	decodeData(t, rec, &subjects)
	require.Len(t, subjects, 1)
	require.NotNil(t, subjects[0].Semester)
	require.NotNil(t, subjects[0].Semester.Course)
	assert.Equal(t, "MCA", subjects[0].Semester.Course.Code)

	rec = app.do(t, http.MethodGet, "/api/subjects/"+subject.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/subjects/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodDelete, "/api/subjects/"+subject.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodGet, "/api/subjects/"+subject.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSemesterNumberRange(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "admin", models.RoleAdmin)
	adminToken := app.token(t, "admin")
	course, _, _ := app.seedSubject(t, adminToken)

	rec := app.do(t, http.MethodPost, "/api/semesters", adminToken, map[string]interface{}{
		"courseId": course.ID, "semesterNumber": 4,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/semesters", adminToken, map[string]interface{}{
		"courseId": course.ID, "semesterNumber": 1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUploadAndDownload(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "admin", models.RoleAdmin)
	adminToken := app.token(t, "admin")
	_, _, subject := app.seedSubject(t, adminToken)

	rec := app.upload(t, adminToken, map[string]string{
		"subjectId":  subject.ID.String(),
		"title":      "Unit 1 Introduction",
		"type":       "notes",
		"unitNumber": "1",
	}, "unit1.pdf", "application/pdf", pdfBytes)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "fileData")

	var created models.Resource
	decodeData(t, rec, &created)
	assert.Equal(t, models.MediaKind("pdf"), created.MediaKind)
	assert.Equal(t, models.CategoryNotes, created.Category)
	require.NotNil(t, created.FileSize)
	assert.Equal(t, int64(len(pdfBytes)), *created.FileSize)

	rec = app.do(t, http.MethodGet, "/api/resources/subject/"+subject.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.Resource
	decodeData(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	rec = app.do(t, http.MethodGet, "/api/resources/download/"+created.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="unit1.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, pdfBytes, rec.Body.Bytes())

	rec = app.do(t, http.MethodPut, "/api/resources/"+created.ID.String(), adminToken, map[string]interface{}{"title": "Introduction"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodDelete, "/api/resources/"+created.ID.String(), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/resources/download/"+created.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodDelete, "/api/resources/"+uuid.NewString(), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejections(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "admin", models.RoleAdmin)
	adminToken := app.token(t, "admin")
	_, _, subject := app.seedSubject(t, adminToken)
	fields := map[string]string{"subjectId": subject.ID.String(), "title": "Notes", "type": "notes"}

	rec := app.upload(t, adminToken, fields, "notes.pdf", "application/pdf", []byte("plain text pretending to be a pdf"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VAL_003", decode(t, rec).Error.Code)

	rec = app.upload(t, adminToken, fields, "big.pdf", "application/pdf", append(append([]byte{}, pdfBytes...), make([]byte, 2<<20)...))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = app.upload(t, adminToken, fields, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	missing := map[string]string{"subjectId": uuid.NewString(), "title": "Notes", "type": "notes"}
	rec = app.upload(t, adminToken, missing, "notes.pdf", "application/pdf", pdfBytes)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/resources/subject/"+subject.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.Resource
	decodeData(t, rec, &listed)
	assert.Empty(t, listed)
}

func TestVideoResources(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "admin", models.RoleAdmin)
	adminToken := app.token(t, "admin")
	_, _, subject := app.seedSubject(t, adminToken)

	rec := app.do(t, http.MethodPost, "/api/resources/video", adminToken, map[string]interface{}{
		"subjectId": subject.ID, "title": "Trees", "url": "https://www.youtube.com/watch?v=abc",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.upload(t, adminToken, map[string]string{
		"subjectId": subject.ID.String(), "title": "Graphs", "type": "video", "url": "https://www.youtube.com/watch?v=def",
	}, "", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/resources/subject/"+subject.ID.String()+"?type=video", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var videos []models.Resource
	decodeData(t, rec, &videos)
	require.Len(t, videos, 2)
	for _, v := range videos {
		assert.Equal(t, models.MediaVideoURL, v.MediaKind)
	}

	rec = app.do(t, http.MethodGet, "/api/resources/subject/"+subject.ID.String()+"?type=notes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []models.Resource
	decodeData(t, rec, &notes)
	assert.Empty(t, notes)

	rec = app.do(t, http.MethodGet, "/api/resources/subject/"+subject.ID.String()+"?type=podcast", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/resources/download/"+videos[0].ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/resources/video", adminToken, map[string]interface{}{
		"subjectId": subject.ID, "title": "Bad", "url": "ftp://example.com/x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/courses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), "Authorization"))
}
