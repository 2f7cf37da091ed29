package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/models/dto"
	"github.com/yigit/educareway/internal/pkg/apperrors"
	"github.com/yigit/educareway/internal/pkg/identity"
)

// Context keys set by the auth middleware
const (
	ContextKeyIdentity = "identity"
	ContextKeyUser     = "user"
)

// UserFinder resolves the local user of a verified identity
type UserFinder interface {
	GetByExternalAuthID(ctx context.Context, externalAuthID string) (*models.User, error)
}

// AuthMiddleware verifies bearer ID tokens and loads the local user
type AuthMiddleware struct {
	verifier identity.Verifier
	users    UserFinder
	logger   zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier identity.Verifier, users UserFinder, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		users:    users,
		logger:   logger,
	}
}

func abortWith(c *gin.Context, status int, code dto.ErrorCode, message, details string) {
	errorDetail := dto.NewErrorDetail(code, message)
	if details != "" {
		errorDetail = errorDetail.WithDetails(details)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(errorDetail))
}

// authenticate verifies the bearer token and stores the identity. It reports
// whether the chain may continue.
func (m *AuthMiddleware) authenticate(c *gin.Context) bool {
	token, err := identity.ExtractBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		abortWith(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "No token provided", "Authorization header must use the Bearer scheme")
		return false
	}

	ident, err := m.verifier.VerifyIDToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, identity.ErrTokenExpired) {
			abortWith(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Invalid token", "Token has expired")
			return false
		}
		m.logger.Debug().Err(err).Msg("ID token verification failed")
		abortWith(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token", "")
		return false
	}

	c.Set(ContextKeyIdentity, ident)
	return true
}

// RequireIdentity only requires a valid ID token. Used before the user exists locally.
func (m *AuthMiddleware) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequireUser requires a valid ID token that belongs to a registered user
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}
		ident, _ := GetIdentity(c)

		user, err := m.users.GetByExternalAuthID(c.Request.Context(), ident.UID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				abortWith(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found", "Register before using this endpoint")
				return
			}
			m.logger.Error().Err(err).Str("uid", ident.UID).Msg("Failed to load user for token")
			abortWith(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Authentication failed", "")
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// RequireAdmin must run after RequireUser
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			abortWith(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", "")
			return
		}
		if !user.IsAdmin() {
			abortWith(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Admin access required", "")
			return
		}
		c.Next()
	}
}

// GetIdentity returns the verified identity stored by RequireIdentity or RequireUser
func GetIdentity(c *gin.Context) (*identity.Identity, bool) {
	v, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return nil, false
	}
	ident, ok := v.(*identity.Identity)
	return ident, ok
}

// GetUser returns the local user stored by RequireUser
func GetUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
