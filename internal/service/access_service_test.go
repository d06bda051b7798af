package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uwuweb/uwuweb-api/internal/models"
)

func TestAdminShortCircuitsOwnership(t *testing.T) {
	// No grants in the roster at all.
	access := NewAccessService(&fakeRoster{}, testLogger())
	admin := Actor{UserID: 1, Role: models.RoleAdmin}
	record := models.AttendanceRecord{ID: 1, EnrollmentID: 10, PeriodID: 20}

	require.True(t, access.TeacherOwnsClass(context.Background(), admin, 3))
	require.True(t, access.TeacherOwnsPeriod(context.Background(), admin, 20))
	require.True(t, access.TeacherOwnsEnrollment(context.Background(), admin, 10))
	require.True(t, access.TeacherOwnsClassSubject(context.Background(), admin, 2))
	require.True(t, access.TeacherTeachesStudent(context.Background(), admin, 5))
	require.True(t, access.CanDecide(context.Background(), admin, record))
	require.True(t, access.CanView(context.Background(), admin, record))

	// Submission is the one predicate admins do not hold directly.
	require.False(t, access.CanSubmit(context.Background(), admin, record))
}

func TestPredicatesDenyOnRepositoryError(t *testing.T) {
	roster := &fakeRoster{
		teacherPeriods:     map[[2]uint]bool{{9, 20}: true},
		studentEnrollments: map[[2]uint]bool{{5, 10}: true},
		parentStudents:     map[[2]uint]bool{{7, 5}: true},
		err:                errors.New("connection reset"),
	}
	access := NewAccessService(roster, testLogger())

	teacher := Actor{UserID: 4, Role: models.RoleTeacher, ScopedID: 9}
	student := Actor{UserID: 2, Role: models.RoleStudent, ScopedID: 5}
	parent := Actor{UserID: 8, Role: models.RoleParent, ScopedID: 7}

	require.False(t, access.TeacherOwnsPeriod(context.Background(), teacher, 20))
	require.False(t, access.StudentOwnsEnrollment(context.Background(), student, 10))
	require.False(t, access.ParentOwnsStudent(context.Background(), parent, 5))
}

func TestTeacherTeachesStudentScopesReads(t *testing.T) {
	roster := &fakeRoster{teacherStudents: map[[2]uint]bool{{9, 5}: true}}
	access := NewAccessService(roster, testLogger())

	owning := Actor{UserID: 4, Role: models.RoleTeacher, ScopedID: 9}
	unrelated := Actor{UserID: 5, Role: models.RoleTeacher, ScopedID: 42}
	student := Actor{UserID: 2, Role: models.RoleStudent, ScopedID: 9}

	require.True(t, access.TeacherTeachesStudent(context.Background(), owning, 5))
	require.False(t, access.TeacherTeachesStudent(context.Background(), unrelated, 5))
	require.False(t, access.TeacherTeachesStudent(context.Background(), student, 5))
}

func TestCanDecideRequiresPeriodOwnership(t *testing.T) {
	roster := &fakeRoster{teacherPeriods: map[[2]uint]bool{{9, 20}: true}}
	access := NewAccessService(roster, testLogger())
	record := models.AttendanceRecord{ID: 1, PeriodID: 20}

	owner := Actor{UserID: 4, Role: models.RoleTeacher, ScopedID: 9}
	other := Actor{UserID: 5, Role: models.RoleTeacher, ScopedID: 11}
	student := Actor{UserID: 2, Role: models.RoleStudent, ScopedID: 5}

	require.True(t, access.CanDecide(context.Background(), owner, record))
	require.False(t, access.CanDecide(context.Background(), other, record))
	require.False(t, access.CanDecide(context.Background(), student, record))
}

func TestCanViewUnionsTheThreeRelationships(t *testing.T) {
	roster := &fakeRoster{
		teacherPeriods:     map[[2]uint]bool{{9, 20}: true},
		studentEnrollments: map[[2]uint]bool{{5, 10}: true},
		parentStudents:     map[[2]uint]bool{{7, 5}: true},
	}
	access := NewAccessService(roster, testLogger())
	record := models.AttendanceRecord{
		ID:           1,
		EnrollmentID: 10,
		PeriodID:     20,
		Enrollment:   models.Enrollment{ID: 10, StudentID: 5},
	}

	require.True(t, access.CanView(context.Background(), Actor{Role: models.RoleTeacher, ScopedID: 9}, record))
	require.True(t, access.CanView(context.Background(), Actor{Role: models.RoleStudent, ScopedID: 5}, record))
	require.True(t, access.CanView(context.Background(), Actor{Role: models.RoleParent, ScopedID: 7}, record))

	require.False(t, access.CanView(context.Background(), Actor{Role: models.RoleTeacher, ScopedID: 11}, record))
	require.False(t, access.CanView(context.Background(), Actor{Role: models.RoleStudent, ScopedID: 6}, record))
	require.False(t, access.CanView(context.Background(), Actor{Role: models.RoleParent, ScopedID: 8}, record))
}

func TestWrongRoleNeverOwns(t *testing.T) {
	roster := &fakeRoster{
		teacherPeriods:     map[[2]uint]bool{{9, 20}: true},
		studentEnrollments: map[[2]uint]bool{{9, 10}: true},
	}
	access := NewAccessService(roster, testLogger())

	// Scoped id 9 exists in both maps, but the role decides which
	// predicate may consult which relation.
	student := Actor{UserID: 2, Role: models.RoleStudent, ScopedID: 9}
	teacher := Actor{UserID: 4, Role: models.RoleTeacher, ScopedID: 9}

	require.False(t, access.TeacherOwnsPeriod(context.Background(), student, 20))
	require.False(t, access.StudentOwnsEnrollment(context.Background(), teacher, 10))
}
