package models

import "time"

// Class is a homeroom group of students.
type Class struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Code  string `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Title string `gorm:"size:255;not null" json:"title"`
}

// Subject is a taught discipline.
type Subject struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null" json:"name"`
}

// ClassSubject assigns a teacher to teach a subject in a class. Every
// teacher-side access check resolves through this row.
type ClassSubject struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ClassID   uint    `gorm:"not null;uniqueIndex:idx_class_subject_teacher" json:"class_id"`
	SubjectID uint    `gorm:"not null;uniqueIndex:idx_class_subject_teacher" json:"subject_id"`
	TeacherID uint    `gorm:"not null;uniqueIndex:idx_class_subject_teacher" json:"teacher_id"`
	Class     Class   `gorm:"constraint:OnDelete:CASCADE" json:"class"`
	Subject   Subject `gorm:"constraint:OnDelete:CASCADE" json:"subject"`
	Teacher   Teacher `gorm:"constraint:OnDelete:CASCADE" json:"teacher"`
}

// Enrollment places a student in a class. It is the join key for
// attendance rows and for student-side access checks.
type Enrollment struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	StudentID uint    `gorm:"not null;uniqueIndex:idx_student_class" json:"student_id"`
	ClassID   uint    `gorm:"not null;uniqueIndex:idx_student_class" json:"class_id"`
	Student   Student `gorm:"constraint:OnDelete:CASCADE" json:"student"`
	Class     Class   `gorm:"constraint:OnDelete:CASCADE" json:"class"`
}

// Period is one class-subject session on a date. Deleting a period
// removes its attendance rows first, inside the same transaction.
type Period struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	ClassSubjectID uint         `gorm:"not null;index" json:"class_subject_id"`
	Date           time.Time    `gorm:"not null;index" json:"date"`
	Label          string       `gorm:"size:64" json:"label"`
	ClassSubject   ClassSubject `gorm:"constraint:OnDelete:CASCADE" json:"class_subject"`
	CreatedAt      time.Time    `json:"created_at"`
}
