package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/models/dto"
	"github.com/yigit/educareway/internal/pkg/apperrors"
	"github.com/yigit/educareway/internal/pkg/identity"
)

type stubUsers map[string]*models.User

func (s stubUsers) GetByExternalAuthID(_ context.Context, uid string) (*models.User, error) {
	if uid == "broken" {
		return nil, errors.New("connection reset")
	}
	if u, ok := s[uid]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func newTestAuth(t *testing.T) (*AuthMiddleware, *identity.DevVerifier) {
	t.Helper()
	verifier := identity.NewDevVerifier(identity.DevConfig{SecretKey: "test-secret", TokenIssuer: "test", TokenTTL: time.Hour})
	users := stubUsers{
		"student-uid": {ExternalAuthID: "student-uid", Role: models.RoleStudent},
		"admin-uid":   {ExternalAuthID: "admin-uid", Role: models.RoleAdmin},
	}
	return NewAuthMiddleware(verifier, users, zerolog.Nop()), verifier
}

func newAuthRouter(m *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/identity", m.RequireIdentity(), func(c *gin.Context) {
		ident, _ := GetIdentity(c)
		c.String(http.StatusOK, ident.UID)
	})
	r.GET("/user", m.RequireUser(), func(c *gin.Context) {
		user, _ := GetUser(c)
		c.String(http.StatusOK, string(user.Role))
	})
	r.GET("/admin", m.RequireUser(), m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/admin-only", m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func bearer(t *testing.T, v *identity.DevVerifier, uid string) string {
	t.Helper()
	token, err := v.Issue(uid, uid+"@example.com", uid)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	m, v := newTestAuth(t)
	r := newAuthRouter(m)

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"missing header", "/identity", "", http.StatusUnauthorized, ""},
		{"no bearer prefix", "/identity", "Token abc", http.StatusUnauthorized, ""},
		{"garbage token", "/identity", "Bearer not.a.jwt", http.StatusUnauthorized, ""},
		{"identity only", "/identity", bearer(t, v, "new-uid"), http.StatusOK, "new-uid"},
		{"unregistered user", "/user", bearer(t, v, "new-uid"), http.StatusNotFound, ""},
		{"repository failure", "/user", bearer(t, v, "broken"), http.StatusInternalServerError, ""},
		{"student", "/user", bearer(t, v, "student-uid"), http.StatusOK, "student"},
		{"student on admin route", "/admin", bearer(t, v, "student-uid"), http.StatusForbidden, ""},
		{"admin", "/admin", bearer(t, v, "admin-uid"), http.StatusNoContent, ""},
		{"admin check without user", "/admin-only", bearer(t, v, "admin-uid"), http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
			if w.Code >= 400 {
				var resp dto.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.False(t, resp.Success)
				require.NotNil(t, resp.Error)
				assert.NotEmpty(t, resp.Error.Message)
			}
		})
	}
}

func TestUnregisteredUserMessage(t *testing.T) {
	m, v := newTestAuth(t)
	r := newAuthRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", bearer(t, v, "nobody"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "User not found", resp.Error.Message)
}

func TestHandleAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"subject missing", apperrors.ErrSubjectNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Subject not found"},
		{"wrapped course missing", fmt.Errorf("loading: %w", apperrors.ErrCourseNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Course not found"},
		{"forbidden custom", apperrors.NewForbiddenError("externalAuthId does not match"), http.StatusForbidden, dto.ErrorCodeForbidden, "externalAuthId does not match"},
		{"duplicate email", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
		{"student id", fmt.Errorf("%w: %w", apperrors.ErrValidationFailed, apperrors.ErrInvalidStudentID), http.StatusBadRequest, dto.ErrorCodeInvalidStudentID, "Student ID must be exactly 11 digits"},
		{"validation field", apperrors.NewValidationError("title", "title is required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "title is required"},
		{"too large", apperrors.NewCustomError(apperrors.ErrFileTooLarge, "file exceeds the 50 MB limit"), http.StatusRequestEntityTooLarge, dto.ErrorCodeFileTooLarge, "file exceeds the 50 MB limit"},
		{"bad mime", apperrors.ErrUnsupportedMedia, http.StatusBadRequest, dto.ErrorCodeUnsupportedMedia, "Invalid file type"},
		{"expired", identity.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	_, detail := resolveError(apperrors.NewValidationError("unitNumber", "unitNumber must be a non-negative integer"))
	assert.Equal(t, "unitNumber", detail.Field)
}

func TestRequestIDAndCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}), RequestID(zerolog.Nop()), RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "given-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "given-id", w.Header().Get("X-Request-Id"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
}
