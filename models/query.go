package models

import (
	"database/sql/driver"
	"time"
)

// Query statuses.
const (
	QueryPending = "pending"
	QueryReplied = "replied"
	QueryClosed  = "closed"
)

// QueryMessage is one message in a query thread.
type QueryMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole string    `json:"sender_role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type QueryMessageList []QueryMessage

func (l QueryMessageList) Value() (driver.Value, error) {
	if l == nil {
		l = QueryMessageList{}
	}
	return jsonValue(l)
}
func (l *QueryMessageList) Scan(src interface{}) error { return jsonScan(l, src) }

// StudentQuery is a student-to-counsellor message thread.
type StudentQuery struct {
	ID           string `gorm:"primaryKey;column:id;size:36" json:"id"`
	UniversityID string `gorm:"column:university_id;size:36;index" json:"university_id"`
	StudentID    string `gorm:"column:student_id;size:36;index" json:"student_id"`
	StudentName  string `gorm:"column:student_name;size:255" json:"student_name"`
	StudentEmail string `gorm:"column:student_email;size:255" json:"student_email"`

	CounsellorID   string `gorm:"column:counsellor_id;size:36;index" json:"counsellor_id,omitempty"`
	CounsellorName string `gorm:"column:counsellor_name;size:255" json:"counsellor_name,omitempty"`

	Subject  string           `gorm:"column:subject;size:255" json:"subject"`
	Status   string           `gorm:"column:status;size:16;default:pending;index" json:"status"`
	Messages QueryMessageList `gorm:"column:messages;type:json" json:"messages"`

	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	ClosedAt  *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`
}

func (StudentQuery) TableName() string {
	return "student_queries"
}
