package dto

import "github.com/google/uuid"

// UploadResourceForm is the multipart form of POST /resources/upload.
// The media kind is derived from the verified file content, so a client
// supplied resourceType is ignored.
type UploadResourceForm struct {
	SubjectID   string `form:"subjectId" binding:"required,uuid"`
	Title       string `form:"title" binding:"required,max=255"`
	Type        string `form:"type" binding:"required,oneof=notes video reference_book"`
	URL         string `form:"url" binding:"omitempty,http_url"`
	ImageURL    string `form:"imageUrl"`
	UnitNumber  string `form:"unitNumber"`
	Description string `form:"description"`
}

// CreateVideoRequest adds a video link to a subject
type CreateVideoRequest struct {
	SubjectID   uuid.UUID `json:"subjectId" binding:"required" swaggertype:"string" format:"uuid"`
	Title       string    `json:"title" binding:"required,max=255" example:"Binary Search Trees"`
	URL         string    `json:"url" binding:"required,http_url" example:"https://www.youtube.com/watch?v=abc"`
	Description string    `json:"description" example:"Lecture recording"`
	ImageURL    string    `json:"imageUrl"`
	UnitNumber  *int      `json:"unitNumber" binding:"omitempty,min=0,max=99" example:"2"`
}

// UpdateResourceRequest represents a metadata update. The stored file cannot be replaced.
type UpdateResourceRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	UnitNumber  *int    `json:"unitNumber" binding:"omitempty,min=0,max=99"`
	URL         *string `json:"url" binding:"omitempty,http_url"`
}
