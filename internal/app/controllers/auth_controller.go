package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/educareway/internal/app/models/dto"
	"github.com/yigit/educareway/internal/app/services"
	"github.com/yigit/educareway/internal/middleware"
	"github.com/yigit/educareway/internal/pkg/apperrors"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Register links the caller's identity to a local user
// @Summary Register the authenticated user
// @Description Creates the local user for a verified ID token. Calling it again for the same identity returns the existing user.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterResponse} "User created"
// @Success 200 {object} dto.APIResponse{data=dto.RegisterResponse} "User already registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or student ID"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "externalAuthId does not match the token"
// @Failure 409 {object} dto.ErrorResponse "Email or student ID already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		respondBindError(ctx, err)
		return
	}

	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), ident, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	respondOK(ctx, status, resp)
}

// GetMe returns the authenticated user
// @Summary Get current user
// @Description Returns the local user of the bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.User} "Current user"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /auth/me [get]
func (c *AuthController) GetMe(ctx *gin.Context) {
	user, ok := middleware.GetUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}
	respondOK(ctx, http.StatusOK, user)
}

// UpdatePushToken stores the device token used for push notifications
// @Summary Update FCM token
// @Description Stores the push notification token of the current device. An empty token disables notifications.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdatePushTokenRequest true "Device token"
// @Success 200 {object} dto.APIResponse "FCM token updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /auth/fcm-token [put]
func (c *AuthController) UpdatePushToken(ctx *gin.Context) {
	var req dto.UpdatePushTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, ok := middleware.GetUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return
	}

	if err := c.authService.UpdatePushToken(ctx.Request.Context(), user.ID, req.FCMToken); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "FCM token updated successfully"))
}
