package dto

import "github.com/google/uuid"

// CreateCourseRequest represents course creation data
type CreateCourseRequest struct {
	Name           string `json:"name" binding:"required,max=255" example:"Master of Computer Applications"`
	Code           string `json:"code" binding:"required,catalogcode" example:"MCA"`
	Description    string `json:"description" example:"Two year postgraduate programme"`
	ImageURL       string `json:"imageUrl" example:"/images/mca.png"`
	TotalSemesters int    `json:"totalSemesters" binding:"omitempty,min=1,max=16" example:"3"`
}

// UpdateCourseRequest represents a partial course update
type UpdateCourseRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=255"`
	Code           *string `json:"code" binding:"omitempty,catalogcode"`
	Description    *string `json:"description"`
	ImageURL       *string `json:"imageUrl"`
	TotalSemesters *int    `json:"totalSemesters" binding:"omitempty,min=1,max=16"`
	IsActive       *bool   `json:"isActive"`
}

// CreateSemesterRequest represents semester creation data
type CreateSemesterRequest struct {
	CourseID       uuid.UUID `json:"courseId" binding:"required" swaggertype:"string" format:"uuid"`
	SemesterNumber int       `json:"semesterNumber" binding:"required,min=1" example:"1"`
	Name           string    `json:"name" binding:"omitempty,max=255" example:"Semester 1"`
}

// CreateSubjectRequest represents subject creation data
type CreateSubjectRequest struct {
	SemesterID  uuid.UUID `json:"semesterId" binding:"required" swaggertype:"string" format:"uuid"`
	Name        string    `json:"name" binding:"required,max=255" example:"Data Structures and Algorithms"`
	Code        string    `json:"code" binding:"required,catalogcode" example:"DSA"`
	Description string    `json:"description" example:"Arrays, lists, trees and graphs"`
	ImageURL    string    `json:"imageUrl" example:"/images/dsa.png"`
}

// UpdateSubjectRequest represents a partial subject update
type UpdateSubjectRequest struct {
	SemesterID  *uuid.UUID `json:"semesterId" swaggertype:"string" format:"uuid"`
	Name        *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Code        *string    `json:"code" binding:"omitempty,catalogcode"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"imageUrl"`
	IsActive    *bool      `json:"isActive"`
}
