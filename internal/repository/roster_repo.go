package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/uwuweb/uwuweb-api/internal/models"
)

// RosterRepository answers the ownership questions behind every access
// check: who teaches what, who is enrolled where, who guards whom.
// It reports raw query results; deny-on-error policy lives in the
// access service.
type RosterRepository interface {
	TeacherOwnsClass(ctx context.Context, teacherID, classID uint) (bool, error)
	TeacherOwnsPeriod(ctx context.Context, teacherID, periodID uint) (bool, error)
	TeacherOwnsEnrollment(ctx context.Context, teacherID, enrollmentID uint) (bool, error)
	TeacherTeachesStudent(ctx context.Context, teacherID, studentID uint) (bool, error)
	StudentOwnsEnrollment(ctx context.Context, studentID, enrollmentID uint) (bool, error)
	ParentOwnsStudent(ctx context.Context, parentID, studentID uint) (bool, error)
	TeacherOwnsClassSubject(ctx context.Context, teacherID, classSubjectID uint) (bool, error)
	StudentIDsForParent(ctx context.Context, parentID uint) ([]uint, error)
	StudentIDForEnrollment(ctx context.Context, enrollmentID uint) (uint, error)
}

type rosterRepository struct {
	db *gorm.DB
}

// NewRosterRepository constructs a repository backed by GORM.
func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) TeacherOwnsClass(ctx context.Context, teacherID, classID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ClassSubject{}).
		Where("teacher_id = ? AND class_id = ?", teacherID, classID).
		Count(&count).Error
	return count > 0, err
}

func (r *rosterRepository) TeacherOwnsPeriod(ctx context.Context, teacherID, periodID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Period{}).
		Joins("JOIN class_subjects ON class_subjects.id = periods.class_subject_id").
		Where("periods.id = ? AND class_subjects.teacher_id = ?", periodID, teacherID).
		Count(&count).Error
	return count > 0, err
}

func (r *rosterRepository) TeacherOwnsEnrollment(ctx context.Context, teacherID, enrollmentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Joins("JOIN class_subjects ON class_subjects.class_id = enrollments.class_id").
		Where("enrollments.id = ? AND class_subjects.teacher_id = ?", enrollmentID, teacherID).
		Count(&count).Error
	return count > 0, err
}

func (r *rosterRepository) TeacherTeachesStudent(ctx context.Context, teacherID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Joins("JOIN class_subjects ON class_subjects.class_id = enrollments.class_id").
		Where("enrollments.student_id = ? AND class_subjects.teacher_id = ?", studentID, teacherID).
		Count(&count).Error
	return count > 0, err
}

func (r *rosterRepository) StudentOwnsEnrollment(ctx context.Context, studentID, enrollmentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ? AND student_id = ?", enrollmentID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *rosterRepository) ParentOwnsStudent(ctx context.Context, parentID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ParentStudent{}).
		Where("parent_id = ? AND student_id = ?", parentID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *rosterRepository) TeacherOwnsClassSubject(ctx context.Context, teacherID, classSubjectID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ClassSubject{}).
		Where("id = ? AND teacher_id = ?", classSubjectID, teacherID).
		Count(&count).Error
	return count > 0, err
}

func (r *rosterRepository) StudentIDsForParent(ctx context.Context, parentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.ParentStudent{}).
		Where("parent_id = ?", parentID).
		Pluck("student_id", &ids).Error
	return ids, err
}

func (r *rosterRepository) StudentIDForEnrollment(ctx context.Context, enrollmentID uint) (uint, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).First(&enrollment, enrollmentID).Error; err != nil {
		return 0, err
	}
	return enrollment.StudentID, nil
}
