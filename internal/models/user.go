package models

import "time"

// Role values carried in sessions and JWT claims.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleParent  = "parent"
)

// User is a login account. Role-specific data lives in the Teacher,
// Student and Parent rows keyed back to the user.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:16;not null" json:"role"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Teacher links a user to the class-subjects they teach.
type Teacher struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"constraint:OnDelete:CASCADE" json:"user"`
}

// Student links a user to their enrollments.
type Student struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"constraint:OnDelete:CASCADE" json:"user"`
}

// Parent links a user to zero or more students via ParentStudent.
type Parent struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"constraint:OnDelete:CASCADE" json:"user"`
}

// ParentStudent is the guardian link consulted by parent read access.
type ParentStudent struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ParentID  uint `gorm:"not null;uniqueIndex:idx_parent_student" json:"parent_id"`
	StudentID uint `gorm:"not null;uniqueIndex:idx_parent_student" json:"student_id"`
}
