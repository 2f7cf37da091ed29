package models

import (
	"time"

	"github.com/google/uuid"
)

// Subject is a topic of study within a semester. Code is the natural key used
// by seeding and bulk ingestion.
type Subject struct {
	ID          uuid.UUID `json:"id" db:"id"`
	SemesterID  uuid.UUID `json:"semesterId" db:"semester_id"`
	Name        string    `json:"name" db:"name" example:"Data Structures and Algorithms"`
	Code        string    `json:"code" db:"code" example:"DSA"`
	Description *string   `json:"description,omitempty" db:"description"`
	ImageURL    *string   `json:"imageUrl,omitempty" db:"image_url"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Semester  *Semester   `json:"semester,omitempty"`
	Resources []*Resource `json:"resources,omitempty"`
}
