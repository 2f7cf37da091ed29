package models

import (
	"time"

	"github.com/google/uuid"
)

// Semester is a numbered term within a course
type Semester struct {
	ID             uuid.UUID `json:"id" db:"id"`
	CourseID       uuid.UUID `json:"courseId" db:"course_id"`
	SemesterNumber int       `json:"semesterNumber" db:"semester_number" example:"1"`
	Name           string    `json:"name" db:"name" example:"Semester 1"`
	IsActive       bool      `json:"isActive" db:"is_active"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Course   *Course    `json:"course,omitempty"`
	Subjects []*Subject `json:"subjects,omitempty"`
}
