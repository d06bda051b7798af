package models

import "time"

// Attendance status values.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

// Approval states of a justification. ApprovalNone means no
// justification has been submitted yet; ApprovalPending means one is
// awaiting a decision.
const (
	ApprovalNone     = "none"
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// AttendanceRecord is one student's attendance for one period, plus the
// justification workflow fields. One row per (enrollment, period).
type AttendanceRecord struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	EnrollmentID      uint       `gorm:"not null;uniqueIndex:idx_enrollment_period" json:"enrollment_id"`
	PeriodID          uint       `gorm:"not null;uniqueIndex:idx_enrollment_period" json:"period_id"`
	Status            string     `gorm:"size:16;not null" json:"status"`
	JustificationText string     `gorm:"type:text" json:"justification_text"`
	JustificationFile string     `gorm:"size:512" json:"justification_file"`
	ApprovalStatus    string     `gorm:"size:16;not null;default:none" json:"approval_status"`
	RejectReason      string     `gorm:"type:text" json:"reject_reason"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Enrollment        Enrollment `gorm:"constraint:OnDelete:CASCADE" json:"enrollment"`
	Period            Period     `gorm:"constraint:OnDelete:CASCADE" json:"period"`
}

// Justifiable reports whether the status admits a justification.
func (r AttendanceRecord) Justifiable() bool {
	return r.Status == AttendanceAbsent || r.Status == AttendanceLate
}

// HasJustification reports whether a justification text or file exists.
func (r AttendanceRecord) HasJustification() bool {
	return r.JustificationText != "" || r.JustificationFile != ""
}

// Decided reports whether the justification carries a final decision.
func (r AttendanceRecord) Decided() bool {
	return r.ApprovalStatus == ApprovalApproved || r.ApprovalStatus == ApprovalRejected
}

// ApprovalLabel returns the human-readable label shown in listings.
func (r AttendanceRecord) ApprovalLabel() string {
	switch r.ApprovalStatus {
	case ApprovalPending:
		return "Pending review"
	case ApprovalApproved:
		return "Approved"
	case ApprovalRejected:
		return "Rejected"
	default:
		return "Not justified"
	}
}
