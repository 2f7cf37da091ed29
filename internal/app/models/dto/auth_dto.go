package dto

import "github.com/yigit/educareway/internal/app/models"

// RegisterRequest links a verified external identity to a local user.
// ExternalAuthID defaults to the uid of the bearer token.
type RegisterRequest struct {
	ExternalAuthID string  `json:"externalAuthId" example:"abc123"`
	Name           string  `json:"name" binding:"required,max=255" example:"Asha Verma"`
	Email          string  `json:"email" binding:"required,email,max=255" example:"asha@example.com"`
	StudentID      *string `json:"studentId" binding:"omitempty,sapid" example:"12345678901"`
}

// RegisterResponse carries the user and whether it was created by this call
type RegisterResponse struct {
	User    *models.User `json:"user"`
	Created bool         `json:"created" example:"true"`
}

// UpdatePushTokenRequest stores or clears the device token. An empty or null token clears it.
type UpdatePushTokenRequest struct {
	FCMToken *string `json:"fcmToken" binding:"omitempty,max=4096" example:"fcm-device-token"`
}
