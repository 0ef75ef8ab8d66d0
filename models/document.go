package models

import (
	"time"
)

// Document verification statuses.
const (
	DocumentUploaded = "uploaded"
	DocumentVerified = "verified"
	DocumentRejected = "rejected"
)

type Document struct {
	ID            string `gorm:"primaryKey;column:id;size:36" json:"id"`
	UniversityID  string `gorm:"column:university_id;size:36;index" json:"university_id"`
	StudentID     string `gorm:"column:student_id;size:36;index" json:"student_id"`
	ApplicationID string `gorm:"column:application_id;size:36;index" json:"application_id"`

	// Name is the requirement the file satisfies, e.g. "10th Marksheet".
	Name     string `gorm:"column:name;size:255" json:"name"`
	FileName string `gorm:"column:file_name;size:255" json:"file_name"`
	FileURL  string `gorm:"column:file_url;size:512" json:"file_url"`
	FileType string `gorm:"column:file_type;size:16" json:"file_type"`
	FileSize int64  `gorm:"column:file_size" json:"file_size"`

	Status          string     `gorm:"column:status;size:32;default:uploaded;index" json:"status"`
	VerifiedBy      string     `gorm:"column:verified_by;size:36" json:"verified_by,omitempty"`
	VerifiedAt      *time.Time `gorm:"column:verified_at" json:"verified_at,omitempty"`
	RejectionReason string     `gorm:"column:rejection_reason;size:512" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}
