package models

import "time"

// GradeItem is a gradable unit (test, homework) within a class-subject.
type GradeItem struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	ClassSubjectID uint         `gorm:"not null;index" json:"class_subject_id"`
	Name           string       `gorm:"size:255;not null" json:"name"`
	MaxPoints      float64      `gorm:"not null" json:"max_points"`
	ClassSubject   ClassSubject `gorm:"constraint:OnDelete:CASCADE" json:"class_subject"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Grade is one student's score on a grade item. One row per
// (item, enrollment), upserted when a teacher re-enters a score.
type Grade struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	GradeItemID  uint       `gorm:"not null;uniqueIndex:idx_item_enrollment" json:"grade_item_id"`
	EnrollmentID uint       `gorm:"not null;uniqueIndex:idx_item_enrollment" json:"enrollment_id"`
	Points       float64    `gorm:"not null" json:"points"`
	Comment      string     `gorm:"type:text" json:"comment"`
	GradeItem    GradeItem  `gorm:"constraint:OnDelete:CASCADE" json:"grade_item"`
	Enrollment   Enrollment `gorm:"constraint:OnDelete:CASCADE" json:"enrollment"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
