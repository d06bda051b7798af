package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uwuweb/uwuweb-api/internal/models"
)

// AttendanceQuery narrows attendance reads without assembling SQL by hand.
type AttendanceQuery struct {
	StudentID uint
	ClassID   *uint
	DateFrom  *time.Time
	DateTo    *time.Time
}

// JustificationQuery narrows justification listings to the caller's scope.
type JustificationQuery struct {
	StudentID   *uint
	TeacherID   *uint
	PendingOnly bool
}

// AttendanceRepository defines data operations for attendance rows and
// their justification fields.
type AttendanceRepository interface {
	GetByID(ctx context.Context, id uint) (models.AttendanceRecord, error)
	List(ctx context.Context, query AttendanceQuery) ([]models.AttendanceRecord, error)
	ListJustifications(ctx context.Context, query JustificationQuery) ([]models.AttendanceRecord, error)
	UpsertStatus(ctx context.Context, enrollmentID, periodID uint, status string) error
	SetJustification(ctx context.Context, id uint, text, file string) error
	SetDecision(ctx context.Context, id uint, approvalStatus, rejectReason string) error
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository instantiates the repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.AttendanceRecord{}).
		Preload("Enrollment").
		Preload("Period").
		Preload("Period.ClassSubject")
}

func (r *attendanceRepository) GetByID(ctx context.Context, id uint) (models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	if err := r.baseQuery(ctx).First(&record, id).Error; err != nil {
		return models.AttendanceRecord{}, err
	}

	return record, nil
}

func (r *attendanceRepository) List(ctx context.Context, query AttendanceQuery) ([]models.AttendanceRecord, error) {
	q := r.baseQuery(ctx).
		Joins("JOIN enrollments ON enrollments.id = attendance_records.enrollment_id").
		Joins("JOIN periods ON periods.id = attendance_records.period_id").
		Where("enrollments.student_id = ?", query.StudentID)

	if query.ClassID != nil {
		q = q.Where("enrollments.class_id = ?", *query.ClassID)
	}

	if query.DateFrom != nil {
		q = q.Where("periods.date >= ?", *query.DateFrom)
	}

	if query.DateTo != nil {
		q = q.Where("periods.date <= ?", *query.DateTo)
	}

	var records []models.AttendanceRecord
	if err := q.Order("periods.date DESC").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *attendanceRepository) ListJustifications(ctx context.Context, query JustificationQuery) ([]models.AttendanceRecord, error) {
	q := r.baseQuery(ctx).
		Joins("JOIN enrollments ON enrollments.id = attendance_records.enrollment_id").
		Joins("JOIN periods ON periods.id = attendance_records.period_id").
		Where("attendance_records.approval_status <> ?", models.ApprovalNone)

	if query.StudentID != nil {
		q = q.Where("enrollments.student_id = ?", *query.StudentID)
	}

	if query.TeacherID != nil {
		q = q.Joins("JOIN class_subjects ON class_subjects.id = periods.class_subject_id").
			Where("class_subjects.teacher_id = ?", *query.TeacherID)
	}

	if query.PendingOnly {
		q = q.Where("attendance_records.approval_status = ?", models.ApprovalPending)
	}

	var records []models.AttendanceRecord
	if err := q.Order("periods.date DESC").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

// UpsertStatus writes one attendance row per (enrollment, period).
// Re-recording a student as present discards any justification state,
// since present rows never carry one.
func (r *attendanceRepository) UpsertStatus(ctx context.Context, enrollmentID, periodID uint, status string) error {
	assignments := map[string]interface{}{"status": status}
	if status == models.AttendancePresent {
		assignments["justification_text"] = ""
		assignments["justification_file"] = ""
		assignments["approval_status"] = models.ApprovalNone
		assignments["reject_reason"] = ""
	}

	record := models.AttendanceRecord{
		EnrollmentID:   enrollmentID,
		PeriodID:       periodID,
		Status:         status,
		ApprovalStatus: models.ApprovalNone,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "period_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&record).Error
}

func (r *attendanceRepository) SetJustification(ctx context.Context, id uint, text, file string) error {
	updates := map[string]interface{}{
		"justification_text": text,
		"approval_status":    models.ApprovalPending,
		"reject_reason":      "",
	}
	if file != "" {
		updates["justification_file"] = file
	}

	return r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SetDecision writes the approval status and reject reason in one
// statement so a decision is never half applied.
func (r *attendanceRepository) SetDecision(ctx context.Context, id uint, approvalStatus, rejectReason string) error {
	return r.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"approval_status": approvalStatus,
			"reject_reason":   rejectReason,
		}).Error
}
