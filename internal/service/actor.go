package service

import (
	"errors"

	"github.com/uwuweb/uwuweb-api/internal/models"
)

// ErrNotAuthorized is returned when an actor lacks the relationship a
// workflow operation requires.
var ErrNotAuthorized = errors.New("actor is not authorized for this resource")

// Actor is the authenticated caller of a workflow operation, resolved
// once at the request boundary. ScopedID is the role-specific id: a
// teacher_id, student_id or parent_id. Admins carry no scoped id.
type Actor struct {
	UserID   uint
	Role     string
	ScopedID uint
}

// IsAdmin reports whether the actor short-circuits ownership checks.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// IsTeacher reports whether the actor acts as a teacher.
func (a Actor) IsTeacher() bool {
	return a.Role == models.RoleTeacher
}

// IsStudent reports whether the actor acts as a student.
func (a Actor) IsStudent() bool {
	return a.Role == models.RoleStudent
}

// IsParent reports whether the actor acts as a parent.
func (a Actor) IsParent() bool {
	return a.Role == models.RoleParent
}
