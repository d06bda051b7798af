package dto

import (
	"time"

	"github.com/uwuweb/uwuweb-api/internal/models"
)

// AttendanceEntry is one student's status within a bulk recording call.
type AttendanceEntry struct {
	EnrollmentID uint   `json:"enrollment_id" validate:"required,gt=0"`
	Status       string `json:"status" validate:"required,oneof=present absent late"`
}

// AttendanceRecordRequest records attendance for one period.
type AttendanceRecordRequest struct {
	PeriodID uint              `json:"period_id" validate:"required,gt=0"`
	Entries  []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceSummaryFilter narrows the summary computation.
type AttendanceSummaryFilter struct {
	StudentID uint       `query:"student_id" validate:"required,gt=0"`
	ClassID   *uint      `query:"class_id"`
	DateFrom  *time.Time `query:"date_from"`
	DateTo    *time.Time `query:"date_to"`
}

// AttendanceSummary is the aggregate over one student's records.
type AttendanceSummary struct {
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	Justified      int     `json:"justified"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// AttendanceRecordResponse is one attendance row in listings.
type AttendanceRecordResponse struct {
	ID             uint      `json:"id"`
	EnrollmentID   uint      `json:"enrollment_id"`
	PeriodID       uint      `json:"period_id"`
	PeriodDate     time.Time `json:"period_date"`
	PeriodLabel    string    `json:"period_label"`
	Status         string    `json:"status"`
	ApprovalStatus string    `json:"approval_status"`
}

// AttendanceSummaryResponse pairs the records with their aggregate.
type AttendanceSummaryResponse struct {
	Records []AttendanceRecordResponse `json:"records"`
	Summary AttendanceSummary          `json:"summary"`
}

// PeriodCreateRequest adds a period to a class-subject.
type PeriodCreateRequest struct {
	ClassSubjectID uint      `json:"class_subject_id" validate:"required,gt=0"`
	Date           time.Time `json:"date" validate:"required"`
	Label          string    `json:"label" validate:"omitempty,max=64"`
}

// PeriodResponse serializes a period.
type PeriodResponse struct {
	ID             uint      `json:"id"`
	ClassSubjectID uint      `json:"class_subject_id"`
	Date           time.Time `json:"date"`
	Label          string    `json:"label"`
}

// NewAttendanceRecordResponse converts an attendance model into a DTO.
func NewAttendanceRecordResponse(record models.AttendanceRecord) AttendanceRecordResponse {
	return AttendanceRecordResponse{
		ID:             record.ID,
		EnrollmentID:   record.EnrollmentID,
		PeriodID:       record.PeriodID,
		PeriodDate:     record.Period.Date,
		PeriodLabel:    record.Period.Label,
		Status:         record.Status,
		ApprovalStatus: record.ApprovalStatus,
	}
}

// NewAttendanceRecordResponseSlice maps a record slice to DTOs.
func NewAttendanceRecordResponseSlice(records []models.AttendanceRecord) []AttendanceRecordResponse {
	responses := make([]AttendanceRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewAttendanceRecordResponse(record))
	}
	return responses
}

// NewPeriodResponse converts a period model into a DTO.
func NewPeriodResponse(period models.Period) PeriodResponse {
	return PeriodResponse{
		ID:             period.ID,
		ClassSubjectID: period.ClassSubjectID,
		Date:           period.Date,
		Label:          period.Label,
	}
}
