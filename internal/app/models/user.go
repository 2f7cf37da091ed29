package models

import (
	"time"

	"github.com/google/uuid"
)

// User defines the user model based on the 'users' table
type User struct {
	ID             uuid.UUID `json:"id" db:"id" example:"5f0c6a4e-8f1f-4b4e-9a43-3d0f5b0c2a11"`
	ExternalAuthID string    `json:"externalAuthId" db:"external_auth_id" example:"abc123"` // Identity provider uid
	Name           string    `json:"name" db:"name" example:"Asha Verma"`
	Email          string    `json:"email" db:"email" example:"asha@example.com"`
	StudentID      *string   `json:"studentId,omitempty" db:"student_id" example:"12345678901"` // SAP ID, nullable
	Role           RoleType  `json:"role" db:"role" example:"student"`
	PushToken      *string   `json:"-" db:"push_token"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user may manage the catalog
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasPushToken reports whether the user registered a device
func (u *User) HasPushToken() bool {
	return u != nil && u.PushToken != nil && *u.PushToken != ""
}
