package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource is a downloadable or linkable study material attached to a subject.
// FileData is only loaded for downloads and never serialized.
type Resource struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	SubjectID   uuid.UUID        `json:"subjectId" db:"subject_id"`
	Title       string           `json:"title" db:"title" example:"Unit 1 Introduction"`
	Category    ResourceCategory `json:"type" db:"category" example:"notes"`
	MediaKind   MediaKind        `json:"resourceType" db:"media_kind" example:"pdf"`
	FileData    []byte           `json:"-" db:"file_data"`
	FileName    *string          `json:"fileName,omitempty" db:"file_name"`
	FileSize    *int64           `json:"fileSize,omitempty" db:"file_size"`
	MimeType    *string          `json:"mimeType,omitempty" db:"mime_type"`
	ExternalURL *string          `json:"url,omitempty" db:"external_url"`
	ImageURL    *string          `json:"imageUrl,omitempty" db:"image_url"`
	UnitNumber  *int             `json:"unitNumber,omitempty" db:"unit_number"`
	Description *string          `json:"description,omitempty" db:"description"`
	HasFile     bool             `json:"hasFile"`
	IsActive    bool             `json:"isActive" db:"is_active"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Subject *Subject `json:"subject,omitempty"`
}
