package models

import (
	"time"
)

// Email notification types.
const (
	EmailUserCredentials     = "user_credentials"
	EmailStudentRegistration = "student_registration"
	EmailLeadAssignment      = "lead_assignment"
	EmailPaymentReceipt      = "payment_receipt"
	EmailRefundNotification  = "refund_notification"
	EmailTestResult          = "test_result"
	EmailApplicationStatus   = "application_status"
)

// Email delivery statuses.
const (
	EmailSent   = "sent"
	EmailFailed = "failed"
)

// EmailLog records every notification mail attempt, sent or failed.
type EmailLog struct {
	ID string `gorm:"primaryKey;column:id;size:36" json:"id"`

	ToEmail   string `gorm:"column:to_email;size:255;index" json:"to_email"`
	ToName    string `gorm:"column:to_name;size:255" json:"to_name,omitempty"`
	Subject   string `gorm:"column:subject;size:255" json:"subject"`
	EmailType string `gorm:"column:email_type;size:32;index" json:"email_type"`

	Status       string `gorm:"column:status;size:16;index" json:"status"`
	ErrorMessage string `gorm:"column:error_message;size:512" json:"error_message,omitempty"`

	UniversityID  string `gorm:"column:university_id;size:36;index" json:"university_id,omitempty"`
	UserID        string `gorm:"column:user_id;size:36" json:"user_id,omitempty"`
	LeadID        string `gorm:"column:lead_id;size:36" json:"lead_id,omitempty"`
	ApplicationID string `gorm:"column:application_id;size:36" json:"application_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (EmailLog) TableName() string {
	return "email_logs"
}
