package dto

import (
	"time"

	"github.com/uwuweb/uwuweb-api/internal/models"
)

// JustificationSubmitRequest is the multipart payload a student sends
// to justify an absence. The file part is optional and handled apart.
type JustificationSubmitRequest struct {
	AttendanceID uint   `form:"attendance_id" validate:"required,gt=0"`
	Text         string `form:"justification_text" validate:"omitempty,max=4000"`
}

// JustificationDecisionRequest decides a pending justification.
// RejectReason is mandatory when Approved is false.
type JustificationDecisionRequest struct {
	Approved     bool   `json:"approved"`
	RejectReason string `json:"reject_reason" validate:"omitempty,max=2000"`
}

// JustificationSubmitResponse reports the submission outcome.
type JustificationSubmitResponse struct {
	Success      bool `json:"success"`
	FileUploaded bool `json:"file_uploaded"`
}

// JustificationResponse is one row in a justification listing.
type JustificationResponse struct {
	AttendanceID   uint      `json:"attendance_id"`
	EnrollmentID   uint      `json:"enrollment_id"`
	PeriodID       uint      `json:"period_id"`
	PeriodDate     time.Time `json:"period_date"`
	PeriodLabel    string    `json:"period_label"`
	Status         string    `json:"status"`
	Text           string    `json:"justification_text"`
	HasFile        bool      `json:"has_file"`
	ApprovalStatus string    `json:"approval_status"`
	ApprovalLabel  string    `json:"approval_label"`
	RejectReason   string    `json:"reject_reason,omitempty"`
}

// NewJustificationResponse converts an attendance record into a listing row.
func NewJustificationResponse(record models.AttendanceRecord) JustificationResponse {
	return JustificationResponse{
		AttendanceID:   record.ID,
		EnrollmentID:   record.EnrollmentID,
		PeriodID:       record.PeriodID,
		PeriodDate:     record.Period.Date,
		PeriodLabel:    record.Period.Label,
		Status:         record.Status,
		Text:           record.JustificationText,
		HasFile:        record.JustificationFile != "",
		ApprovalStatus: record.ApprovalStatus,
		ApprovalLabel:  record.ApprovalLabel(),
		RejectReason:   record.RejectReason,
	}
}

// NewJustificationResponseSlice maps a record slice to listing rows.
func NewJustificationResponseSlice(records []models.AttendanceRecord) []JustificationResponse {
	responses := make([]JustificationResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewJustificationResponse(record))
	}
	return responses
}
