package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/datatypes"
)

// Coarse application statuses.
const (
	AppStatusDraft      = "draft"
	AppStatusInProgress = "in_progress"
	AppStatusSubmitted  = "submitted"
	AppStatusAdmitted   = "admitted"
	AppStatusRejected   = "rejected"
)

// EducationalDetail is one prior-qualification row on an application.
type EducationalDetail struct {
	Qualification   string  `json:"qualification"`
	BoardUniversity string  `json:"board_university"`
	PassingYear     int     `json:"passing_year"`
	MarksPercentage float64 `json:"marks_percentage"`
	Grade           string  `json:"grade,omitempty"`
}

type EducationalDetailList []EducationalDetail

func (l EducationalDetailList) Value() (driver.Value, error) {
	if l == nil {
		l = EducationalDetailList{}
	}
	return jsonValue(l)
}
func (l *EducationalDetailList) Scan(src interface{}) error { return jsonScan(l, src) }

type Application struct {
	ID           string `gorm:"primaryKey;column:id;size:36" json:"id"`
	UniversityID string `gorm:"column:university_id;size:36;uniqueIndex:idx_applications_tenant_student;index" json:"university_id"`
	StudentID    string `gorm:"column:student_id;size:36;uniqueIndex:idx_applications_tenant_student;index" json:"student_id"`
	LeadID       string `gorm:"column:lead_id;size:36" json:"lead_id,omitempty"`

	ApplicationNumber string `gorm:"column:application_number;size:16;uniqueIndex" json:"application_number"`

	CourseID     string `gorm:"column:course_id;size:36" json:"course_id,omitempty"`
	DepartmentID string `gorm:"column:department_id;size:36" json:"department_id,omitempty"`
	SessionID    string `gorm:"column:session_id;size:36" json:"session_id,omitempty"`

	Status         string     `gorm:"column:status;size:32;default:draft;index" json:"status"`
	CurrentStep    string     `gorm:"column:current_step;size:32;default:basic_info" json:"current_step"`
	CompletedSteps StringList `gorm:"column:completed_steps;type:json" json:"completed_steps"`

	BasicInfo          datatypes.JSONMap     `gorm:"column:basic_info" json:"basic_info,omitempty"`
	EducationalDetails EducationalDetailList `gorm:"column:educational_details;type:json" json:"educational_details"`

	TestAttemptID string   `gorm:"column:test_attempt_id;size:36" json:"test_attempt_id,omitempty"`
	TestScore     *float64 `gorm:"column:test_score" json:"test_score,omitempty"`
	TestPassed    *bool    `gorm:"column:test_passed" json:"test_passed,omitempty"`

	PaymentID      string `gorm:"column:payment_id;size:36" json:"payment_id,omitempty"`
	FeeAmountPaise int64  `gorm:"column:fee_amount_paise" json:"fee_amount_paise,omitempty"`
	PaymentStatus  string `gorm:"column:payment_status;size:32" json:"payment_status,omitempty"`

	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`

	ReviewedBy  string     `gorm:"column:reviewed_by;size:36" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNotes string     `gorm:"column:review_notes;size:1024" json:"review_notes,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}

// MarkStepCompleted appends step to CompletedSteps if absent and moves the
// wizard cursor to next.
func (a *Application) MarkStepCompleted(step, next string) {
	if !a.CompletedSteps.Contains(step) {
		a.CompletedSteps = append(a.CompletedSteps, step)
	}
	a.CurrentStep = next
}
