package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/uwuweb/uwuweb-api/internal/models"
	"github.com/uwuweb/uwuweb-api/internal/repository"
)

// AccessService holds the ownership predicates gating every workflow
// operation. Predicates never return an error: a storage failure is
// logged and resolved to deny, so callers treat false as the only
// failure mode.
type AccessService interface {
	TeacherOwnsClass(ctx context.Context, actor Actor, classID uint) bool
	TeacherOwnsPeriod(ctx context.Context, actor Actor, periodID uint) bool
	TeacherOwnsEnrollment(ctx context.Context, actor Actor, enrollmentID uint) bool
	TeacherOwnsClassSubject(ctx context.Context, actor Actor, classSubjectID uint) bool
	TeacherTeachesStudent(ctx context.Context, actor Actor, studentID uint) bool
	StudentOwnsEnrollment(ctx context.Context, actor Actor, enrollmentID uint) bool
	ParentOwnsStudent(ctx context.Context, actor Actor, studentID uint) bool

	CanDecide(ctx context.Context, actor Actor, record models.AttendanceRecord) bool
	CanSubmit(ctx context.Context, actor Actor, record models.AttendanceRecord) bool
	CanView(ctx context.Context, actor Actor, record models.AttendanceRecord) bool
}

type accessService struct {
	roster repository.RosterRepository
	logger zerolog.Logger
}

// NewAccessService constructs the access predicate set.
func NewAccessService(roster repository.RosterRepository, logger zerolog.Logger) AccessService {
	return &accessService{
		roster: roster,
		logger: logger.With().Str("component", "access_service").Logger(),
	}
}

func (s *accessService) deny(err error, predicate string) bool {
	if err != nil {
		s.logger.Warn().Err(err).Str("predicate", predicate).Msg("access check failed, denying")
	}
	return false
}

func (s *accessService) TeacherOwnsClass(ctx context.Context, actor Actor, classID uint) bool {
	if actor.IsAdmin() {
		return true
	}
	if !actor.IsTeacher() {
		return false
	}

	ok, err := s.roster.TeacherOwnsClass(ctx, actor.ScopedID, classID)
	if err != nil {
		return s.deny(err, "teacher_owns_class")
	}
	return ok
}

func (s *accessService) TeacherOwnsPeriod(ctx context.Context, actor Actor, periodID uint) bool {
	if actor.IsAdmin() {
		return true
	}
	if !actor.IsTeacher() {
		return false
	}

	ok, err := s.roster.TeacherOwnsPeriod(ctx, actor.ScopedID, periodID)
	if err != nil {
		return s.deny(err, "teacher_owns_period")
	}
	return ok
}

func (s *accessService) TeacherOwnsEnrollment(ctx context.Context, actor Actor, enrollmentID uint) bool {
	if actor.IsAdmin() {
		return true
	}
	if !actor.IsTeacher() {
		return false
	}

	ok, err := s.roster.TeacherOwnsEnrollment(ctx, actor.ScopedID, enrollmentID)
	if err != nil {
		return s.deny(err, "teacher_owns_enrollment")
	}
	return ok
}

func (s *accessService) TeacherOwnsClassSubject(ctx context.Context, actor Actor, classSubjectID uint) bool {
	if actor.IsAdmin() {
		return true
	}
	if !actor.IsTeacher() {
		return false
	}

	ok, err := s.roster.TeacherOwnsClassSubject(ctx, actor.ScopedID, classSubjectID)
	if err != nil {
		return s.deny(err, "teacher_owns_class_subject")
	}
	return ok
}

// TeacherTeachesStudent reports whether the teacher has the student in
// any of their class-subjects. It gates teacher reads of a student's
// attendance history.
func (s *accessService) TeacherTeachesStudent(ctx context.Context, actor Actor, studentID uint) bool {
	if actor.IsAdmin() {
		return true
	}
	if !actor.IsTeacher() {
		return false
	}

	ok, err := s.roster.TeacherTeachesStudent(ctx, actor.ScopedID, studentID)
	if err != nil {
		return s.deny(err, "teacher_teaches_student")
	}
	return ok
}

func (s *accessService) StudentOwnsEnrollment(ctx context.Context, actor Actor, enrollmentID uint) bool {
	if !actor.IsStudent() {
		return false
	}

	ok, err := s.roster.StudentOwnsEnrollment(ctx, actor.ScopedID, enrollmentID)
	if err != nil {
		return s.deny(err, "student_owns_enrollment")
	}
	return ok
}

func (s *accessService) ParentOwnsStudent(ctx context.Context, actor Actor, studentID uint) bool {
	if !actor.IsParent() {
		return false
	}

	ok, err := s.roster.ParentOwnsStudent(ctx, actor.ScopedID, studentID)
	if err != nil {
		return s.deny(err, "parent_owns_student")
	}
	return ok
}

// CanDecide grants approval rights to admins and to teachers who teach
// the record's period.
func (s *accessService) CanDecide(ctx context.Context, actor Actor, record models.AttendanceRecord) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.IsTeacher() && s.TeacherOwnsPeriod(ctx, actor, record.PeriodID)
}

// CanSubmit grants submission rights to the student who owns the
// record's enrollment, and to no one else.
func (s *accessService) CanSubmit(ctx context.Context, actor Actor, record models.AttendanceRecord) bool {
	return actor.IsStudent() && s.StudentOwnsEnrollment(ctx, actor, record.EnrollmentID)
}

// CanView is the union of decide rights, submit rights and the parent
// relationship to the record's student.
func (s *accessService) CanView(ctx context.Context, actor Actor, record models.AttendanceRecord) bool {
	if s.CanDecide(ctx, actor, record) {
		return true
	}
	if s.CanSubmit(ctx, actor, record) {
		return true
	}
	return actor.IsParent() && s.ParentOwnsStudent(ctx, actor, record.Enrollment.StudentID)
}
