package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTotalSemesters is used when a course is created without a semester count
const DefaultTotalSemesters = 3

// Course is a top level academic programme such as MCA
type Course struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name" example:"Master of Computer Applications"`
	Code           string    `json:"code" db:"code" example:"MCA"`
	Description    *string   `json:"description,omitempty" db:"description"`
	ImageURL       *string   `json:"imageUrl,omitempty" db:"image_url"`
	TotalSemesters int       `json:"totalSemesters" db:"total_semesters" example:"3"`
	IsActive       bool      `json:"isActive" db:"is_active"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Semesters []*Semester `json:"semesters,omitempty"`
}
