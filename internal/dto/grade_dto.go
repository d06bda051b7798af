package dto

import (
	"time"

	"github.com/uwuweb/uwuweb-api/internal/models"
)

// GradeItemCreateRequest defines a gradable unit for a class-subject.
type GradeItemCreateRequest struct {
	ClassSubjectID uint    `json:"class_subject_id" validate:"required,gt=0"`
	Name           string  `json:"name" validate:"required,min=1,max=255"`
	MaxPoints      float64 `json:"max_points" validate:"required,gt=0"`
}

// GradeUpsertRequest enters or overwrites one student's score.
type GradeUpsertRequest struct {
	GradeItemID  uint    `json:"grade_item_id" validate:"required,gt=0"`
	EnrollmentID uint    `json:"enrollment_id" validate:"required,gt=0"`
	Points       float64 `json:"points" validate:"gte=0"`
	Comment      string  `json:"comment" validate:"omitempty,max=2000"`
}

// GradeItemResponse serializes a grade item.
type GradeItemResponse struct {
	ID             uint      `json:"id"`
	ClassSubjectID uint      `json:"class_subject_id"`
	Name           string    `json:"name"`
	MaxPoints      float64   `json:"max_points"`
	CreatedAt      time.Time `json:"created_at"`
}

// GradeResponse serializes one score.
type GradeResponse struct {
	ID           uint    `json:"id"`
	GradeItemID  uint    `json:"grade_item_id"`
	EnrollmentID uint    `json:"enrollment_id"`
	Points       float64 `json:"points"`
	MaxPoints    float64 `json:"max_points,omitempty"`
	ItemName     string  `json:"item_name,omitempty"`
	Comment      string  `json:"comment"`
}

// NewGradeItemResponse converts a grade item model into a DTO.
func NewGradeItemResponse(item models.GradeItem) GradeItemResponse {
	return GradeItemResponse{
		ID:             item.ID,
		ClassSubjectID: item.ClassSubjectID,
		Name:           item.Name,
		MaxPoints:      item.MaxPoints,
		CreatedAt:      item.CreatedAt,
	}
}

// NewGradeResponse converts a grade model into a DTO.
func NewGradeResponse(grade models.Grade) GradeResponse {
	return GradeResponse{
		ID:           grade.ID,
		GradeItemID:  grade.GradeItemID,
		EnrollmentID: grade.EnrollmentID,
		Points:       grade.Points,
		MaxPoints:    grade.GradeItem.MaxPoints,
		ItemName:     grade.GradeItem.Name,
		Comment:      grade.Comment,
	}
}

// NewGradeResponseSlice maps a grade slice to DTOs.
func NewGradeResponseSlice(grades []models.Grade) []GradeResponse {
	responses := make([]GradeResponse, 0, len(grades))
	for _, grade := range grades {
		responses = append(responses, NewGradeResponse(grade))
	}
	return responses
}
