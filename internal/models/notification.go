package models

import "time"

// Notification types emitted by the justification workflow.
const (
	NotificationJustificationApproved = "justification_approved"
	NotificationJustificationRejected = "justification_rejected"
)

// Notification is a per-user message shown on the dashboard.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"size:64" json:"type"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
